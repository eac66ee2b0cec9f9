package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/authd/internal/core/domain"
)

// AccessTokenSigner issues the short-lived signed credential. The core
// never inspects the value it produces.
type AccessTokenSigner interface {
	Sign(user *domain.User) (*domain.AccessToken, error)

	// Subject extracts the user ID from a signed token. With
	// allowExpired the signature is still verified but claim expiry is
	// ignored; logout must work for stale sessions.
	Subject(token string, allowExpired bool) (uuid.UUID, error)
}

// RenewalOutcome is the terminal decision of the renewal policy engine.
type RenewalOutcome int

const (
	OutcomeReject RenewalOutcome = iota
	OutcomeAccept
	OutcomeRotateAndAccept
)

type LoginResult struct {
	AccessToken  *domain.AccessToken
	RefreshToken *domain.RefreshToken
}

// RefreshResult carries the engine outcome to the HTTP layer. On
// OutcomeReject all other fields are zero; the caller degrades to a
// logged-out response instead of erroring.
type RefreshResult struct {
	Outcome      RenewalOutcome
	AccessToken  *domain.AccessToken
	RefreshToken *domain.RefreshToken // the active row; freshly rotated when Rotated
	Rotated      bool
	MinutesLeft  int64 // minutes that were left on the presented token
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Refresh(ctx context.Context, presented string) (*RefreshResult, error)
	Logout(ctx context.Context, ownerID uuid.UUID) error
}
