package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/authd/internal/core/domain"
	"github.com/vncsmyrnk/authd/internal/core/ports"
)

type stubAuthService struct {
	loginResult   *ports.LoginResult
	loginErr      error
	refreshResult *ports.RefreshResult
	refreshErr    error
	presented     string
	loggedOut     []uuid.UUID
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginResult, s.loginErr
}

func (s *stubAuthService) Refresh(ctx context.Context, presented string) (*ports.RefreshResult, error) {
	s.presented = presented
	return s.refreshResult, s.refreshErr
}

func (s *stubAuthService) Logout(ctx context.Context, ownerID uuid.UUID) error {
	s.loggedOut = append(s.loggedOut, ownerID)
	return nil
}

type stubSigner struct {
	subject uuid.UUID
}

func (s *stubSigner) Sign(user *domain.User) (*domain.AccessToken, error) {
	return &domain.AccessToken{Value: "signed", ExpiresAt: time.Now().Add(15 * time.Minute)}, nil
}

func (s *stubSigner) Subject(token string, allowExpired bool) (uuid.UUID, error) {
	if token == "good-token" {
		return s.subject, nil
	}
	return uuid.Nil, domain.ErrBadCredentials
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(svc ports.AuthService, signer ports.AccessTokenSigner) *httptest.Server {
	h := NewAuthHandler(svc, "refresh_token", false, discardLogger())
	return httptest.NewServer(NewHandler(h, signer))
}

func refreshCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "refresh_token" {
			return c
		}
	}
	return nil
}

func futureToken(ownerID uuid.UUID, value string, in time.Duration) *domain.RefreshToken {
	return &domain.RefreshToken{
		ID:        uuid.New(),
		UserID:    ownerID,
		Value:     value,
		ExpiresAt: time.Now().UTC().Add(in),
	}
}

func TestLogin_SetsRefreshCookie(t *testing.T) {
	owner := uuid.New()
	svc := &stubAuthService{
		loginResult: &ports.LoginResult{
			AccessToken:  &domain.AccessToken{Value: "access", ExpiresAt: time.Now().Add(15 * time.Minute)},
			RefreshToken: futureToken(owner, "fresh-refresh", 7*24*time.Hour),
		},
	}
	server := newTestServer(svc, &stubSigner{})
	defer server.Close()

	resp, err := server.Client().Post(server.URL+"/login", "application/json",
		strings.NewReader(`{"email":"ana@example.com","password":"hunter2"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "access", body["access_token"])
	assert.Equal(t, "bearer", body["token_type"])

	cookie := refreshCookie(resp)
	require.NotNil(t, cookie, "login must set the refresh cookie")
	assert.Equal(t, "fresh-refresh", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.InDelta(t, 7*24*3600, cookie.MaxAge, 5)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := &stubAuthService{loginErr: domain.ErrBadCredentials}
	server := newTestServer(svc, &stubSigner{})
	defer server.Close()

	resp, err := server.Client().Post(server.URL+"/login", "application/json",
		strings.NewReader(`{"email":"ana@example.com","password":"wrong"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "LOGIN_BAD_CREDENTIALS")
	assert.Nil(t, refreshCookie(resp), "no cookie on a failed login")
}

func TestToken_RejectDegradesToLoggedOut(t *testing.T) {
	svc := &stubAuthService{refreshResult: &ports.RefreshResult{Outcome: ports.OutcomeReject}}
	server := newTestServer(svc, &stubSigner{})
	defer server.Close()

	req, _ := http.NewRequest(http.MethodPost, server.URL+"/token", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "long-gone"})

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode, "rejection is not an error")
	assert.Equal(t, "long-gone", svc.presented)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "", body["access_token"])

	cookie := refreshCookie(resp)
	require.NotNil(t, cookie)
	assert.Negative(t, cookie.MaxAge, "the dead cookie must be cleared client-side")
}

func TestToken_MissingCookiePresentsEmptyValue(t *testing.T) {
	svc := &stubAuthService{refreshResult: &ports.RefreshResult{Outcome: ports.OutcomeReject}}
	server := newTestServer(svc, &stubSigner{})
	defer server.Close()

	resp, err := server.Client().Post(server.URL+"/token", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "", svc.presented)
}

func TestToken_AcceptLeavesCookieAlone(t *testing.T) {
	owner := uuid.New()
	svc := &stubAuthService{
		refreshResult: &ports.RefreshResult{
			Outcome:      ports.OutcomeAccept,
			AccessToken:  &domain.AccessToken{Value: "new-access", ExpiresAt: time.Now().Add(15 * time.Minute)},
			RefreshToken: futureToken(owner, "still-good", 45*time.Minute),
			MinutesLeft:  44,
		},
	}
	server := newTestServer(svc, &stubSigner{})
	defer server.Close()

	req, _ := http.NewRequest(http.MethodPost, server.URL+"/token", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "still-good"})

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body tokenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "new-access", body.AccessToken)
	assert.Equal(t, int64(44), body.Mins)
	assert.False(t, body.Now.IsZero())

	assert.Nil(t, refreshCookie(resp), "no rotation, no new cookie")
}

func TestToken_RotationSetsNewCookie(t *testing.T) {
	owner := uuid.New()
	rotated := futureToken(owner, "rotated-value", 7*24*time.Hour)
	svc := &stubAuthService{
		refreshResult: &ports.RefreshResult{
			Outcome:      ports.OutcomeRotateAndAccept,
			AccessToken:  &domain.AccessToken{Value: "new-access", ExpiresAt: time.Now().Add(15 * time.Minute)},
			RefreshToken: rotated,
			Rotated:      true,
			MinutesLeft:  10,
		},
	}
	server := newTestServer(svc, &stubSigner{})
	defer server.Close()

	req, _ := http.NewRequest(http.MethodPost, server.URL+"/token", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "near-expiry"})

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	cookie := refreshCookie(resp)
	require.NotNil(t, cookie, "rotation must hand out the new cookie")
	assert.Equal(t, "rotated-value", cookie.Value)
	assert.InDelta(t, 7*24*3600, cookie.MaxAge, 5, "cookie lifetime equals the new token TTL")
}

func TestToken_CookieInvariantViolationIsLoud(t *testing.T) {
	owner := uuid.New()
	svc := &stubAuthService{
		refreshResult: &ports.RefreshResult{
			Outcome:      ports.OutcomeRotateAndAccept,
			AccessToken:  &domain.AccessToken{Value: "new-access", ExpiresAt: time.Now().Add(15 * time.Minute)},
			RefreshToken: futureToken(owner, "already-dead", -time.Minute),
			Rotated:      true,
			MinutesLeft:  10,
		},
	}
	server := newTestServer(svc, &stubSigner{})
	defer server.Close()

	req, _ := http.NewRequest(http.MethodPost, server.URL+"/token", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "near-expiry"})

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode,
		"a rotated token that is already expired is a logic fault, not a logged-out state")
}

func TestLogout_RequiresBearerToken(t *testing.T) {
	server := newTestServer(&stubAuthService{}, &stubSigner{})
	defer server.Close()

	resp, err := server.Client().Get(server.URL + "/logout")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogout_InvalidatesAndClearsCookie(t *testing.T) {
	owner := uuid.New()
	svc := &stubAuthService{}
	server := newTestServer(svc, &stubSigner{subject: owner})
	defer server.Close()

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/logout", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, svc.loggedOut, 1)
	assert.Equal(t, owner, svc.loggedOut[0])

	cookie := refreshCookie(resp)
	require.NotNil(t, cookie)
	assert.Negative(t, cookie.MaxAge)
}
