package user

import (
	"time"
)

type User struct {
	ID                int64     `json:"id"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	PasswordHash      *string   `json:"-"`
	PreferredLanguage string    `json:"preferredLanguage"`
	BaseCurrency      string    `json:"baseCurrency"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type CreateUserParams struct {
	Email             string
	Name              string
	PasswordHash      *string
	PreferredLanguage string
	BaseCurrency      string
}

type UpdateUserParams struct {
	Name              *string
	PreferredLanguage *string
	BaseCurrency      *string
}
