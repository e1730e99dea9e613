package currency

import "context"

// Provider fetches a live exchange rate from an external source.
// Implementations may fail transiently; the normalizer handles fallback.
type Provider interface {
	GetRate(ctx context.Context, from, to string) (Rate, error)
}

// SnapshotStore persists last-known rates so the stale-rate fallback survives
// process restarts. Implementations must tolerate concurrent Save calls.
type SnapshotStore interface {
	Load(ctx context.Context) ([]Rate, error)
	Save(ctx context.Context, rate Rate) error
}
