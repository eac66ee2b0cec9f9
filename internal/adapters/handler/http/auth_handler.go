package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/authd/internal/core/domain"
	"github.com/vncsmyrnk/authd/internal/core/ports"
)

type AuthHandler struct {
	service       ports.AuthService
	cookieName    string
	secureCookies bool
	logger        *slog.Logger
}

func NewAuthHandler(service ports.AuthService, cookieName string, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service:       service,
		cookieName:    cookieName,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Expires     time.Time `json:"expires"`
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	Mins        int64     `json:"mins"`
	Expires     time.Time `json:"expires"`
	Now         time.Time `json:"now"`
}

// Login godoc
// @Summary      Authenticates a user
// @Description  Verifies credentials and issues an access token plus a refresh token cookie. The refresh token is renewed on every login to prevent accidental logouts.
// @Tags         auth
// @Accept       json
// @Success      200
// @Failure      400
// @Router       /login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrBadCredentials) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"detail":"LOGIN_BAD_CREDENTIALS"}`))
			return
		}
		h.logger.ErrorContext(r.Context(), "login failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	cookie, err := NewRefreshCookie(h.cookieName, result.RefreshToken, h.secureCookies)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "refresh cookie invariant violated", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, cookie)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(loginResponse{
		AccessToken: result.AccessToken.Value,
		TokenType:   "bearer",
		Expires:     result.AccessToken.ExpiresAt,
	})
}

// Token godoc
// @Summary      Creates a new access token from the refresh token cookie
// @Description  If the refresh token is still valid a new access token is generated; near expiry the refresh token is rotated as well. An expired or missing refresh token is equivalent to being logged out and yields an empty access token, never an error.
// @Tags         auth
// @Accept       json
// @Success      200
// @Router       /token [post]
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var presented string
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		presented = cookie.Value
	}

	result, err := h.service.Refresh(r.Context(), presented)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "refresh failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if result.Outcome == ports.OutcomeReject {
		h.respondLoggedOut(w)
		return
	}

	if result.Rotated {
		cookie, err := NewRefreshCookie(h.cookieName, result.RefreshToken, h.secureCookies)
		if err != nil {
			h.logger.ErrorContext(r.Context(), "refresh cookie invariant violated", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		http.SetCookie(w, cookie)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tokenResponse{
		AccessToken: result.AccessToken.Value,
		Mins:        result.MinutesLeft,
		Expires:     result.RefreshToken.ExpiresAt,
		Now:         time.Now().UTC(),
	})
}

// Logout godoc
// @Summary      Logs the authenticated user out
// @Description  Blacklists all refresh tokens of the user and clears the cookie. Works even when the access token has already expired.
// @Tags         auth
// @Success      200
// @Failure      401
// @Router       /logout [get]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	if err := h.service.Logout(r.Context(), userID); err != nil {
		h.logger.ErrorContext(r.Context(), "logout failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.expireRefreshCookie(w)
	w.Header().Del("Authorization")
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// respondLoggedOut is the Reject branch: clear everything session
// related and answer 200 with an empty token. Expiry and absence are
// expected conditions, not faults.
func (h *AuthHandler) respondLoggedOut(w http.ResponseWriter) {
	h.expireRefreshCookie(w)
	w.Header().Del("Authorization")
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"access_token":""}`))
}

func (h *AuthHandler) expireRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: h.cookieName, MaxAge: -1, Path: "/"})
}
