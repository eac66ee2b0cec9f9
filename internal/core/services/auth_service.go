package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/authd/internal/core/domain"
	"github.com/vncsmyrnk/authd/internal/core/ports"
)

type AuthService struct {
	users  ports.UserRepository
	tokens ports.TokenRepository
	signer ports.AccessTokenSigner
	engine *renewalEngine
}

func NewAuthService(users ports.UserRepository, tokens ports.TokenRepository, signer ports.AccessTokenSigner, cutoffMinutes int64) *AuthService {
	if cutoffMinutes <= 0 {
		cutoffMinutes = DefaultCutoffMinutes
	}
	return &AuthService{
		users:  users,
		tokens: tokens,
		signer: signer,
		engine: &renewalEngine{tokens: tokens, cutoffMinutes: cutoffMinutes},
	}
}

// Login authenticates the credentials, renews the user's refresh token
// and signs a new access token. The refresh token is renewed on every
// login so an old cookie never outlives a fresh session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, domain.ErrBadCredentials
	}

	refresh, err := rotateOrCreate(ctx, s.tokens, user.ID)
	if err != nil {
		return nil, err
	}

	access, err := s.signer.Sign(user)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	return &ports.LoginResult{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh runs the renewal policy engine over the presented value. A
// rejected token yields an empty result with OutcomeReject, not an
// error; being logged out is an expected state.
func (s *AuthService) Refresh(ctx context.Context, presented string) (*ports.RefreshResult, error) {
	decision, err := s.engine.Evaluate(ctx, presented)
	if err != nil {
		return nil, err
	}
	if decision.outcome == ports.OutcomeReject {
		return &ports.RefreshResult{Outcome: ports.OutcomeReject}, nil
	}

	user, err := s.users.GetByID(ctx, decision.token.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &ports.RefreshResult{Outcome: ports.OutcomeReject}, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return &ports.RefreshResult{Outcome: ports.OutcomeReject}, nil
	}

	access, err := s.signer.Sign(user)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	return &ports.RefreshResult{
		Outcome:      decision.outcome,
		AccessToken:  access,
		RefreshToken: decision.token,
		Rotated:      decision.rotated,
		MinutesLeft:  decision.minutes,
	}, nil
}

// Logout blacklists every refresh token the owner holds. It works even
// when the caller's access token has already expired.
func (s *AuthService) Logout(ctx context.Context, ownerID uuid.UUID) error {
	if err := s.tokens.Invalidate(ctx, ownerID); err != nil {
		return fmt.Errorf("failed to invalidate refresh tokens: %w", err)
	}
	return nil
}
