package alerting

import "context"

// Repository persists device tokens and enumerates users for the sweep.
type Repository interface {
	// UpsertDeviceToken registers a token, reassigning it if it already
	// belongs to another user.
	UpsertDeviceToken(ctx context.Context, params RegisterTokenParams) (*DeviceToken, error)

	// GetActiveTokens returns the active tokens for one user.
	GetActiveTokens(ctx context.Context, userID int64) ([]DeviceToken, error)

	// DeactivateToken marks a token inactive after FCM reports it invalid.
	DeactivateToken(ctx context.Context, token string) error

	// ListBudgetUsers returns every user that has at least one budget
	// threshold configured, with their stored preferences.
	ListBudgetUsers(ctx context.Context) ([]BudgetUser, error)
}
