package domain

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is the single long-lived credential a user holds for
// obtaining new access tokens. At most one non-blacklisted row exists
// per user; rotation overwrites Value and ExpiresAt in place.
type RefreshToken struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Value         string    `json:"-"`
	ExpiresAt     time.Time `json:"expires_at"`
	IsBlacklisted bool      `json:"is_blacklisted"`
	CreatedAt     time.Time `json:"created_at"`
}

// AccessToken is the short-lived signed credential returned to clients.
// The service treats the value as opaque; only the signer knows its shape.
type AccessToken struct {
	Value     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires"`
}
