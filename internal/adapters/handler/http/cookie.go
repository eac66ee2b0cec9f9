package http

import (
	"net/http"

	"github.com/vncsmyrnk/authd/internal/core/domain"
)

// NewRefreshCookie builds the refresh-token cookie for a token record.
// MaxAge is the whole seconds left until the token expires. A token
// that is not strictly in the future is a logic fault upstream, so the
// caller gets domain.ErrInvalidExpiry instead of a dead cookie.
func NewRefreshCookie(name string, token *domain.RefreshToken, secure bool) (*http.Cookie, error) {
	secs := domain.ExpiresIn(token.ExpiresAt, domain.UnitSeconds)
	if secs <= 0 {
		return nil, domain.ErrInvalidExpiry
	}
	return &http.Cookie{
		Name:     name,
		Value:    token.Value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(secs),
	}, nil
}
