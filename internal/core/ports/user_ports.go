package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/authd/internal/core/domain"
)

// UserRepository is the external user store. Registration, profile data
// and uniqueness checks live with whoever implements it.
type UserRepository interface {
	// Authenticate returns the user matching the credentials, or nil
	// when either the email or the password is wrong.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}
