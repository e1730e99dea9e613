package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"tandem/internal/domain/partnership"
)

// Filter narrows a transaction fetch. An empty Categories slice means no
// category restriction.
type Filter struct {
	Range      DateRange
	Categories []string
}

// Gateway is the read-only contract the query engine consumes. Implementations
// own partnership-scoped filtering and pagination; callers may assume bounded
// result sets. The engine never bypasses the partnership scope carried in ctx
// arguments.
type Gateway interface {
	// FetchTransactions returns the records visible to the given partnership
	// scope within the filter, ordered by date ascending.
	FetchTransactions(ctx context.Context, scope partnership.Context, filter Filter) ([]Record, error)

	// FetchBudgetThresholds returns the configured per-category monthly
	// spending thresholds for a user, in the user's base currency.
	FetchBudgetThresholds(ctx context.Context, userID int64) (map[string]decimal.Decimal, error)
}
