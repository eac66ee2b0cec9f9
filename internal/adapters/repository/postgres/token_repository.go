// Package postgres implements the core repository ports over
// database/sql with the lib/pq driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/authd/internal/core/domain"
	"github.com/vncsmyrnk/authd/internal/core/ports"
	"github.com/vncsmyrnk/authd/internal/core/services"
)

type TokenRepository struct {
	db  *sql.DB
	ttl time.Duration
}

// NewTokenRepository binds the repository to db. ttl is the fixed
// refresh-token lifetime applied on every create and rotate.
func NewTokenRepository(db *sql.DB, ttl time.Duration) ports.TokenRepository {
	return &TokenRepository{db: db, ttl: ttl}
}

func (r *TokenRepository) Create(ctx context.Context, ownerID uuid.UUID) (*domain.RefreshToken, error) {
	value, err := services.GenerateRefreshToken(services.RefreshTokenBytes)
	if err != nil {
		return nil, err
	}

	token := &domain.RefreshToken{
		UserID:    ownerID,
		Value:     value,
		ExpiresAt: time.Now().UTC().Add(r.ttl),
	}

	query := `
		INSERT INTO refresh_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, is_blacklisted, created_at
	`
	err = r.db.QueryRowContext(ctx, query, token.UserID, token.Value, token.ExpiresAt).
		Scan(&token.ID, &token.IsBlacklisted, &token.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert refresh token: %w", err)
	}
	return token, nil
}

// Rotate overwrites value and expiry of the owner's unique active row
// as a single UPDATE, so two concurrent rotations serialize on the row
// and neither leaves a duplicate behind.
func (r *TokenRepository) Rotate(ctx context.Context, ownerID uuid.UUID) (*domain.RefreshToken, error) {
	value, err := services.GenerateRefreshToken(services.RefreshTokenBytes)
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().UTC().Add(r.ttl)

	query := `
		UPDATE refresh_tokens
		SET token = $2, expires_at = $3
		WHERE user_id = $1 AND NOT is_blacklisted
		RETURNING id, created_at
	`
	token := &domain.RefreshToken{
		UserID:    ownerID,
		Value:     value,
		ExpiresAt: expiresAt,
	}
	err = r.db.QueryRowContext(ctx, query, ownerID, value, expiresAt).
		Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	return token, nil
}

// RotateValue swaps value and expiry of the row holding exactly the
// presented value. Conditioning the UPDATE on the token itself makes it
// a compare-and-swap: of two concurrent refreshes presenting the same
// value, the second one matches zero rows and gets domain.ErrNotFound.
func (r *TokenRepository) RotateValue(ctx context.Context, presented string) (*domain.RefreshToken, error) {
	value, err := services.GenerateRefreshToken(services.RefreshTokenBytes)
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().UTC().Add(r.ttl)

	query := `
		UPDATE refresh_tokens
		SET token = $2, expires_at = $3
		WHERE token = $1 AND NOT is_blacklisted
		RETURNING id, user_id, created_at
	`
	token := &domain.RefreshToken{
		Value:     value,
		ExpiresAt: expiresAt,
	}
	err = r.db.QueryRowContext(ctx, query, presented, value, expiresAt).
		Scan(&token.ID, &token.UserID, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	return token, nil
}

func (r *TokenRepository) LookupActive(ctx context.Context, value string) (*domain.RefreshToken, error) {
	query := `
		SELECT id, user_id, token, expires_at, is_blacklisted, created_at
		FROM refresh_tokens
		WHERE token = $1 AND NOT is_blacklisted
	`
	token := &domain.RefreshToken{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&token.ID,
		&token.UserID,
		&token.Value,
		&token.ExpiresAt,
		&token.IsBlacklisted,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	return token, nil
}

func (r *TokenRepository) Invalidate(ctx context.Context, ownerID uuid.UUID) error {
	query := `UPDATE refresh_tokens SET is_blacklisted = TRUE WHERE user_id = $1 AND NOT is_blacklisted`
	if _, err := r.db.ExecContext(ctx, query, ownerID); err != nil {
		return fmt.Errorf("failed to blacklist refresh tokens: %w", err)
	}
	return nil
}
