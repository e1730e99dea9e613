package currency

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrRateUnavailable is returned when no usable exchange rate exists for a
// required pair: the live fetch failed and nothing was ever cached.
var ErrRateUnavailable = errors.New("no exchange rate available")

// Source records where a rate came from.
type Source string

const (
	SourceLive           Source = "live"
	SourceCachedFallback Source = "cached-fallback"
)

// Rate is the conversion rate between two currencies at a point in time.
// Value is always > 0.
type Rate struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	Value     decimal.Decimal `json:"value"`
	FetchedAt time.Time       `json:"fetchedAt"`
	Source    Source          `json:"source"`
}

// Pair returns the cache key for the rate's currency pair.
func (r Rate) Pair() string {
	return PairKey(r.From, r.To)
}

// StaleAt reports whether the rate is older than ttl at the given instant.
func (r Rate) StaleAt(ttl time.Duration, now time.Time) bool {
	return now.Sub(r.FetchedAt) > ttl
}

// PairKey builds the canonical "FROM/TO" key for a currency pair.
func PairKey(from, to string) string {
	return fmt.Sprintf("%s/%s", from, to)
}

// Converted is the result of a normalization. Stale is set when the amount was
// derived from a rate past its validity window, so responses can be annotated.
type Converted struct {
	Amount decimal.Decimal
	Stale  bool
}
