package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"tandem/internal/domain/currency"
	"tandem/internal/domain/query"
	"tandem/internal/domain/reply"
	"tandem/internal/domain/user"
	"tandem/internal/shared/middleware"
)

// Answerer is the query engine contract the handler depends on.
type Answerer interface {
	Answer(ctx context.Context, req query.Request) (*query.Response, error)
}

type QueryHandler struct {
	engine Answerer
	users  user.Repository
	log    zerolog.Logger
}

func NewQueryHandler(engine Answerer, users user.Repository, log zerolog.Logger) *QueryHandler {
	return &QueryHandler{
		engine: engine,
		users:  users,
		log:    log.With().Str("component", "query_handler").Logger(),
	}
}

type QueryRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// HandleQuery answers one natural-language question for the authenticated
// user. The stored profile supplies the language preference when the request
// omits one, and the base currency for amounts with no explicit currency.
func (h *QueryHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	engineReq := query.Request{
		UserID:   userID,
		Text:     req.Text,
		Language: req.Language,
	}
	if u, err := h.users.GetByID(r.Context(), userID); err == nil {
		if engineReq.Language == "" {
			engineReq.Language = u.PreferredLanguage
		}
		engineReq.BaseCurrency = u.BaseCurrency
	} else if !errors.Is(err, user.ErrNotFound) {
		h.log.Warn().Err(err).Int64("user_id", userID).Msg("user profile lookup failed")
	}

	resp, err := h.engine.Answer(r.Context(), engineReq)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("query failed")
		switch {
		case errors.Is(err, currency.ErrRateUnavailable):
			http.Error(w, "Exchange rates are temporarily unavailable", http.StatusServiceUnavailable)
		case errors.Is(err, query.ErrDataFetchFailed):
			http.Error(w, "Transaction data is temporarily unavailable", http.StatusBadGateway)
		case errors.Is(err, reply.ErrTemplateMissing):
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		default:
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
