package partnership

import "context"

// Repository resolves the partnership scope for a user.
type Repository interface {
	// Resolve returns the partnership context for userID. Users without a
	// partner resolve to a solo context, never an error.
	Resolve(ctx context.Context, userID int64) (Context, error)
}
