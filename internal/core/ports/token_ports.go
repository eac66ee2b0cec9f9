package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/authd/internal/core/domain"
)

// TokenRepository persists the single active refresh token per user.
type TokenRepository interface {
	// Create generates a fresh value, sets expiry = now + TTL and
	// inserts a new row for the owner.
	Create(ctx context.Context, ownerID uuid.UUID) (*domain.RefreshToken, error)

	// Rotate overwrites value and expiry of the owner's unique
	// non-blacklisted row in place. Returns domain.ErrNotFound when no
	// such row exists; callers fall back to Create.
	Rotate(ctx context.Context, ownerID uuid.UUID) (*domain.RefreshToken, error)

	// RotateValue overwrites the row holding exactly the presented
	// value, a compare-and-swap on the value itself. When two refreshes
	// race on the same value only one swap succeeds; the loser gets
	// domain.ErrNotFound and must treat the value as spent.
	RotateValue(ctx context.Context, presented string) (*domain.RefreshToken, error)

	// LookupActive finds the non-blacklisted row matching value.
	// Expired rows are still returned; expiry is the policy engine's
	// decision. Returns domain.ErrNotFound when absent.
	LookupActive(ctx context.Context, value string) (*domain.RefreshToken, error)

	// Invalidate blacklists every row belonging to the owner.
	Invalidate(ctx context.Context, ownerID uuid.UUID) error
}
