package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/vncsmyrnk/authd/internal/core/ports"
)

type contextKey string

const UserIDKey contextKey = "userID"

// SessionMiddleware requires a signature-valid Bearer token and puts
// the user ID on the request context. Claim expiry is deliberately not
// checked: logout must work for sessions whose access token lapsed.
func SessionMiddleware(signer ports.AccessTokenSigner) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			userID, err := signer.Subject(token, true)
			if err != nil {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
