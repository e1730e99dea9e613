package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"tandem/internal/domain/alerting"
)

type AlertingRepository struct {
	db *DB
}

func NewAlertingRepository(db *DB) *AlertingRepository {
	return &AlertingRepository{db: db}
}

// UpsertDeviceToken registers a token. The token column is unique; a token
// moving to another user (app reinstall, account switch) is reassigned and
// reactivated.
func (r *AlertingRepository) UpsertDeviceToken(ctx context.Context, params alerting.RegisterTokenParams) (*alerting.DeviceToken, error) {
	query := `
		INSERT INTO device_tokens (id, user_id, token, platform, active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (token) DO UPDATE SET
		    user_id = EXCLUDED.user_id,
		    platform = EXCLUDED.platform,
		    active = TRUE,
		    updated_at = CURRENT_TIMESTAMP
		RETURNING id, user_id, token, platform, active, created_at, updated_at
	`

	var token alerting.DeviceToken
	err := r.db.QueryRowContext(
		ctx, query,
		uuid.NewString(), params.UserID, params.Token, params.Platform,
	).Scan(
		&token.ID, &token.UserID, &token.Token, &token.Platform,
		&token.Active, &token.CreatedAt, &token.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert device token: %w", err)
	}

	return &token, nil
}

func (r *AlertingRepository) GetActiveTokens(ctx context.Context, userID int64) ([]alerting.DeviceToken, error) {
	query := `
		SELECT id, user_id, token, platform, active, created_at, updated_at
		FROM device_tokens
		WHERE user_id = $1 AND active = TRUE
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []alerting.DeviceToken
	for rows.Next() {
		var token alerting.DeviceToken
		err := rows.Scan(
			&token.ID, &token.UserID, &token.Token, &token.Platform,
			&token.Active, &token.CreatedAt, &token.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating device tokens: %w", err)
	}

	return tokens, nil
}

func (r *AlertingRepository) DeactivateToken(ctx context.Context, token string) error {
	query := `
		UPDATE device_tokens
		SET active = FALSE, updated_at = CURRENT_TIMESTAMP
		WHERE token = $1
	`

	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("failed to deactivate device token: %w", err)
	}
	return nil
}

// ListBudgetUsers enumerates users with at least one positive budget
// threshold, together with their stored language and currency preferences.
func (r *AlertingRepository) ListBudgetUsers(ctx context.Context) ([]alerting.BudgetUser, error) {
	query := `
		SELECT DISTINCT u.id, u.preferred_language, u.base_currency
		FROM users u
		JOIN budget_thresholds bt ON bt.user_id = u.id
		WHERE bt.threshold > 0
		ORDER BY u.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list budget users: %w", err)
	}
	defer rows.Close()

	var users []alerting.BudgetUser
	for rows.Next() {
		var user alerting.BudgetUser
		if err := rows.Scan(&user.ID, &user.Language, &user.BaseCurrency); err != nil {
			return nil, fmt.Errorf("failed to scan budget user: %w", err)
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget users: %w", err)
	}

	return users, nil
}
