// Package redis provides a read-through cache over the refresh token
// repository. Redis only ever holds copies; Postgres stays the source
// of truth and a cache failure degrades to a database lookup.
package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vncsmyrnk/authd/internal/core/domain"
	"github.com/vncsmyrnk/authd/internal/core/ports"
)

type TokenCache struct {
	inner  ports.TokenRepository
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

func NewTokenCache(inner ports.TokenRepository, client redis.UniversalClient, prefix string, logger *slog.Logger) ports.TokenRepository {
	if prefix == "" {
		prefix = "authd"
	}
	return &TokenCache{inner: inner, client: client, prefix: prefix, logger: logger}
}

func (c *TokenCache) valueKey(value string) string {
	return c.prefix + ":rt:" + value
}

func (c *TokenCache) ownerKey(ownerID uuid.UUID) string {
	return c.prefix + ":owner:" + ownerID.String()
}

func (c *TokenCache) Create(ctx context.Context, ownerID uuid.UUID) (*domain.RefreshToken, error) {
	token, err := c.inner.Create(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	c.replace(ctx, token)
	return token, nil
}

func (c *TokenCache) Rotate(ctx context.Context, ownerID uuid.UUID) (*domain.RefreshToken, error) {
	token, err := c.inner.Rotate(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	c.replace(ctx, token)
	return token, nil
}

func (c *TokenCache) RotateValue(ctx context.Context, presented string) (*domain.RefreshToken, error) {
	token, err := c.inner.RotateValue(ctx, presented)
	if err != nil {
		return nil, err
	}
	c.client.Del(ctx, c.valueKey(presented))
	c.replace(ctx, token)
	return token, nil
}

func (c *TokenCache) LookupActive(ctx context.Context, value string) (*domain.RefreshToken, error) {
	if data, err := c.client.Get(ctx, c.valueKey(value)).Bytes(); err == nil {
		token := &domain.RefreshToken{}
		if err := json.Unmarshal(data, token); err == nil {
			// Value is excluded from JSON, restore it from the key.
			token.Value = value
			return token, nil
		}
		// corrupt entry, fall through to the database
		c.client.Del(ctx, c.valueKey(value))
	}

	token, err := c.inner.LookupActive(ctx, value)
	if err != nil {
		return nil, err
	}
	c.store(ctx, token)
	return token, nil
}

func (c *TokenCache) Invalidate(ctx context.Context, ownerID uuid.UUID) error {
	if err := c.inner.Invalidate(ctx, ownerID); err != nil {
		return err
	}
	c.evictOwner(ctx, ownerID)
	return nil
}

// replace evicts the owner's previously cached value and stores the new
// token under both the value key and the owner pointer.
func (c *TokenCache) replace(ctx context.Context, token *domain.RefreshToken) {
	c.evictOwner(ctx, token.UserID)
	c.store(ctx, token)
}

func (c *TokenCache) store(ctx context.Context, token *domain.RefreshToken) {
	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return
	}
	data, err := json.Marshal(token)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.valueKey(token.Value), data, ttl).Err(); err != nil {
		c.warn(ctx, "failed to cache refresh token", err)
		return
	}
	if err := c.client.Set(ctx, c.ownerKey(token.UserID), token.Value, ttl).Err(); err != nil {
		c.warn(ctx, "failed to cache owner pointer", err)
	}
}

func (c *TokenCache) evictOwner(ctx context.Context, ownerID uuid.UUID) {
	value, err := c.client.Get(ctx, c.ownerKey(ownerID)).Result()
	if err == nil && value != "" {
		c.client.Del(ctx, c.valueKey(value))
	}
	c.client.Del(ctx, c.ownerKey(ownerID))
}

func (c *TokenCache) warn(ctx context.Context, msg string, err error) {
	if c.logger != nil {
		c.logger.WarnContext(ctx, msg, "error", err)
	}
}
