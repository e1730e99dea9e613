package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"tandem/internal/domain/partnership"
)

type PartnershipRepository struct {
	db *DB
}

func NewPartnershipRepository(db *DB) *PartnershipRepository {
	return &PartnershipRepository{db: db}
}

// Resolve returns the partnership scope for a user. A user may appear on
// either side of the partnerships row; no row at all means a solo context.
func (r *PartnershipRepository) Resolve(ctx context.Context, userID int64) (partnership.Context, error) {
	query := `
		SELECT user_a, user_b, active
		FROM partnerships
		WHERE user_a = $1 OR user_b = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var userA, userB int64
	var active bool

	err := r.db.QueryRowContext(ctx, query, userID).Scan(&userA, &userB, &active)
	if err == sql.ErrNoRows {
		return partnership.Solo(userID), nil
	}
	if err != nil {
		return partnership.Context{}, fmt.Errorf("failed to resolve partnership: %w", err)
	}

	partnerID := userB
	if userID == userB {
		partnerID = userA
	}
	return partnership.Context{UserID: userID, PartnerID: &partnerID, Active: active}, nil
}
