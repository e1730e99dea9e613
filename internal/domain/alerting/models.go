package alerting

import (
	"errors"
	"time"
)

var ErrInvalidToken = errors.New("device token is required")

// DeviceToken is a registered push target for one user. Tokens go inactive
// when FCM reports them unregistered; they are never deleted so re-registration
// is an upsert.
type DeviceToken struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	Token     string    `json:"token"`
	Platform  string    `json:"platform"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RegisterTokenParams carries a device registration.
type RegisterTokenParams struct {
	UserID   int64  `json:"userId"`
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

func (p RegisterTokenParams) Validate() error {
	if p.Token == "" {
		return ErrInvalidToken
	}
	if p.UserID <= 0 {
		return errors.New("valid user ID is required")
	}
	return nil
}

// BudgetUser is a user with at least one configured budget threshold, as
// enumerated for the daily sweep. Language and currency come from the user's
// stored preferences.
type BudgetUser struct {
	ID           int64
	Language     string
	BaseCurrency string
}
