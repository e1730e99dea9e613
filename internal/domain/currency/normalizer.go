package currency

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is the validity window after which a cached rate is stale.
const DefaultTTL = 1 * time.Hour

// Normalizer converts amounts between currencies using a process-wide rate
// cache. Reads are snapshot reads under a RWMutex; refreshes are coalesced
// per currency pair with singleflight so concurrent queries needing the same
// stale pair trigger at most one external fetch. Unrelated pairs never block
// each other.
type Normalizer struct {
	provider  Provider
	snapshots SnapshotStore // optional
	ttl       time.Duration
	log       zerolog.Logger

	mu    sync.RWMutex
	cache map[string]Rate

	group singleflight.Group
}

// NewNormalizer creates a normalizer backed by the given provider.
func NewNormalizer(provider Provider, ttl time.Duration, log zerolog.Logger) *Normalizer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Normalizer{
		provider: provider,
		ttl:      ttl,
		log:      log.With().Str("component", "currency").Logger(),
		cache:    make(map[string]Rate),
	}
}

// WithSnapshots attaches a persisted snapshot store. Call LoadSnapshots
// afterwards to seed the cache.
func (n *Normalizer) WithSnapshots(store SnapshotStore) *Normalizer {
	n.snapshots = store
	return n
}

// LoadSnapshots seeds the cache with persisted rates. Loaded rates keep their
// original fetch time, so anything past the TTL is immediately stale but still
// usable as a fallback.
func (n *Normalizer) LoadSnapshots(ctx context.Context) error {
	if n.snapshots == nil {
		return nil
	}
	rates, err := n.snapshots.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rate snapshots: %w", err)
	}

	n.mu.Lock()
	for _, r := range rates {
		if r.Value.IsPositive() {
			n.cache[r.Pair()] = r
		}
	}
	n.mu.Unlock()

	n.log.Info().Int("count", len(rates)).Msg("Loaded persisted exchange rates")
	return nil
}

// Normalize converts amount from one currency to another as of the given
// instant. Identity conversions never touch the cache. A fresh cached rate is
// used directly; a stale or missing rate triggers a coalesced live fetch; on
// fetch failure the last known rate is used and the result is marked stale.
// With no rate ever cached for the pair, ErrRateUnavailable is returned.
func (n *Normalizer) Normalize(ctx context.Context, amount decimal.Decimal, from, to string, asOf time.Time) (Converted, error) {
	if from == to {
		return Converted{Amount: amount}, nil
	}

	key := PairKey(from, to)

	if rate, ok := n.lookup(key); ok && !rate.StaleAt(n.ttl, asOf) {
		return Converted{Amount: amount.Mul(rate.Value)}, nil
	}

	rate, stale, err := n.refresh(ctx, from, to, asOf)
	if err != nil {
		return Converted{}, err
	}
	return Converted{Amount: amount.Mul(rate.Value), Stale: stale}, nil
}

// Refresh forces a live fetch for a pair, updating the cache on success.
// Used by the warm-up job; queries go through Normalize.
func (n *Normalizer) Refresh(ctx context.Context, from, to string) error {
	rate, err := n.provider.GetRate(ctx, from, to)
	if err != nil {
		return fmt.Errorf("failed to refresh rate %s: %w", PairKey(from, to), err)
	}
	n.store(rate)
	return nil
}

func (n *Normalizer) lookup(key string) (Rate, bool) {
	n.mu.RLock()
	rate, ok := n.cache[key]
	n.mu.RUnlock()
	return rate, ok
}

func (n *Normalizer) store(rate Rate) {
	n.mu.Lock()
	n.cache[rate.Pair()] = rate
	n.mu.Unlock()

	if n.snapshots != nil {
		// Best effort: a failed snapshot write never fails the query.
		if err := n.snapshots.Save(context.WithoutCancel(context.Background()), rate); err != nil {
			n.log.Warn().Err(err).Str("pair", rate.Pair()).Msg("Failed to persist rate snapshot")
		}
	}
}

// refreshResult carries the outcome of a coalesced fetch to all waiters.
type refreshResult struct {
	rate  Rate
	stale bool
}

// refresh performs the coalesced fetch-or-fallback for a pair. The actual
// provider call runs on a context detached from the requesting query, so a
// cancelled query abandons its wait without cancelling a refresh other
// queries are awaiting.
func (n *Normalizer) refresh(ctx context.Context, from, to string, asOf time.Time) (Rate, bool, error) {
	key := PairKey(from, to)

	ch := n.group.DoChan(key, func() (any, error) {
		// Re-check under coalescing: another waiter may have refreshed.
		if rate, ok := n.lookup(key); ok && !rate.StaleAt(n.ttl, asOf) {
			return refreshResult{rate: rate}, nil
		}

		rate, err := n.provider.GetRate(context.WithoutCancel(ctx), from, to)
		if err == nil {
			rate.Source = SourceLive
			n.store(rate)
			return refreshResult{rate: rate}, nil
		}

		if cached, ok := n.lookup(key); ok {
			n.log.Warn().Err(err).Str("pair", key).Msg("Live rate fetch failed, falling back to cached rate")
			cached.Source = SourceCachedFallback
			return refreshResult{rate: cached, stale: true}, nil
		}

		return nil, fmt.Errorf("%w for %s: %v", ErrRateUnavailable, key, err)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return Rate{}, false, res.Err
		}
		out := res.Val.(refreshResult)
		return out.rate, out.stale, nil
	case <-ctx.Done():
		// The shared fetch keeps running for other waiters.
		return Rate{}, false, ctx.Err()
	}
}
