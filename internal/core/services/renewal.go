package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/authd/internal/core/domain"
	"github.com/vncsmyrnk/authd/internal/core/ports"
)

// DefaultCutoffMinutes is the remaining-lifetime threshold below which
// a still-valid refresh token is proactively rotated.
const DefaultCutoffMinutes = 30

// renewalEngine decides what to do with a presented refresh token value.
// Expiry and absence are ordinary outcomes here, never errors; only
// storage faults propagate.
type renewalEngine struct {
	tokens        ports.TokenRepository
	cutoffMinutes int64
}

type renewalDecision struct {
	outcome ports.RenewalOutcome
	token   *domain.RefreshToken // presented row, or the rotated row
	rotated bool
	minutes int64 // minutes left on the presented token
}

var rejected = &renewalDecision{outcome: ports.OutcomeReject}

// Evaluate walks the states in order: absent, not found, expired,
// near expiry, valid.
func (e *renewalEngine) Evaluate(ctx context.Context, presented string) (*renewalDecision, error) {
	if presented == "" {
		return rejected, nil
	}

	token, err := e.tokens.LookupActive(ctx, presented)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return rejected, nil
		}
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}

	mins := domain.ExpiresIn(token.ExpiresAt, domain.UnitMinutes)
	if mins <= 0 {
		return rejected, nil
	}

	if mins <= e.cutoffMinutes {
		rotated, err := e.tokens.RotateValue(ctx, presented)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// a concurrent refresh already consumed this value;
				// only that winner's cookie stays live
				return rejected, nil
			}
			return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
		}
		return &renewalDecision{
			outcome: ports.OutcomeRotateAndAccept,
			token:   rotated,
			rotated: true,
			minutes: mins,
		}, nil
	}

	return &renewalDecision{
		outcome: ports.OutcomeAccept,
		token:   token,
		minutes: mins,
	}, nil
}

// rotateOrCreate renews the owner's active token on login, creating one
// when rotation reports no active row: the first login ever, or a row
// that went missing from the store.
func rotateOrCreate(ctx context.Context, tokens ports.TokenRepository, ownerID uuid.UUID) (*domain.RefreshToken, error) {
	token, err := tokens.Rotate(ctx, ownerID)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	token, err = tokens.Create(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}
	return token, nil
}
