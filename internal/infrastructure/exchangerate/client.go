package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tandem/internal/domain/currency"
)

const requestTimeout = 10 * time.Second

// Client implements currency.Provider against a Frankfurter-compatible
// exchange rate API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
	log        zerolog.Logger
}

func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		tracer:     otel.Tracer("tandem.exchangerate"),
		log:        log.With().Str("component", "exchangerate").Logger(),
	}
}

type latestResponse struct {
	Base  string                 `json:"base"`
	Date  string                 `json:"date"`
	Rates map[string]json.Number `json:"rates"`
}

// GetRate fetches the live rate for one pair. The returned rate carries the
// fetch time, not the provider's quote date, because staleness is measured
// against our own cache window.
func (c *Client) GetRate(ctx context.Context, from, to string) (currency.Rate, error) {
	ctx, span := c.tracer.Start(ctx, "exchangerate.GetRate", trace.WithAttributes(
		attribute.String("currency.from", from),
		attribute.String("currency.to", to),
	))
	defer span.End()

	endpoint := fmt.Sprintf("%s/latest?%s", c.baseURL, url.Values{
		"from": {from},
		"to":   {to},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return currency.Rate{}, fmt.Errorf("building rate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return currency.Rate{}, fmt.Errorf("fetching rate %s/%s: %w", from, to, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("rate API returned status %d: %s", resp.StatusCode, body)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return currency.Rate{}, err
	}

	var payload latestResponse
	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		return currency.Rate{}, fmt.Errorf("decoding rate response: %w", err)
	}

	raw, ok := payload.Rates[to]
	if !ok {
		return currency.Rate{}, fmt.Errorf("rate API response missing %s rate", to)
	}
	value, err := decimal.NewFromString(raw.String())
	if err != nil {
		return currency.Rate{}, fmt.Errorf("invalid rate value %q: %w", raw, err)
	}
	if !value.IsPositive() {
		return currency.Rate{}, fmt.Errorf("non-positive rate %s for %s/%s", value, from, to)
	}

	c.log.Debug().Str("pair", currency.PairKey(from, to)).Str("rate", value.String()).Msg("fetched live rate")

	return currency.Rate{
		From:      from,
		To:        to,
		Value:     value,
		FetchedAt: time.Now().UTC(),
		Source:    currency.SourceLive,
	}, nil
}
