package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"tandem/internal/domain/alerting"
	"tandem/internal/shared/middleware"
)

type DeviceHandler struct {
	service *alerting.Service
	log     zerolog.Logger
}

func NewDeviceHandler(service *alerting.Service, log zerolog.Logger) *DeviceHandler {
	return &DeviceHandler{
		service: service,
		log:     log.With().Str("component", "device_handler").Logger(),
	}
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform,omitempty"`
}

// HandleRegisterDevice registers a push token for budget alerts.
func (h *DeviceHandler) HandleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.service.RegisterDevice(r.Context(), alerting.RegisterTokenParams{
		UserID:   userID,
		Token:    req.Token,
		Platform: req.Platform,
	})
	if err != nil {
		if errors.Is(err, alerting.ErrInvalidToken) {
			http.Error(w, "token is required", http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Int64("user_id", userID).Msg("device registration failed")
		http.Error(w, "Failed to register device", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(token)
}
