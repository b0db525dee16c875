package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type stubAuthService struct {
	auth.AuthService
	loginErr  error
	revoked   []string
	refreshed []string
}

func (s *stubAuthService) Login(_ context.Context, req auth.LoginRequest, track auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}
	if s.loginErr != nil {
		return auth.TokenResponse{}, s.loginErr
	}
	return auth.TokenResponse{
		AccessToken:           "access-" + req.Email,
		AccessTokenExpiresIn:  time.Now().Add(time.Hour).Unix(),
		RefreshToken:          "refresh-" + track.UserAgent,
		RefreshTokenExpiresIn: time.Now().Add(24 * time.Hour).Unix(),
	}, nil
}

func (s *stubAuthService) Logout(_ context.Context, token string) error {
	s.revoked = append(s.revoked, token)
	return nil
}

func (s *stubAuthService) RefreshToken(_ context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	if req.RefreshToken == "" {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}
	s.refreshed = append(s.refreshed, req.RefreshToken)
	return auth.AccessTokenResponse{AccessToken: "new-access"}, nil
}

func newTestJWT() jwt.Service {
	return jwt.NewJWTService(handlerTestSecret, time.Hour, 24*time.Hour, false)
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Login_Success(t *testing.T) {
	svc := &stubAuthService{}
	handler := NewAuthHandler(newTestJWT(), svc, nil, "http://localhost:3000", false)

	body, _ := json.Marshal(auth.LoginRequest{Email: "sari@example.com", Password: "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("User-Agent", "test-agent")
	w := httptest.NewRecorder()

	handler.Login(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp["success"].(bool))
	data := resp["data"].(map[string]any)
	assert.Equal(t, "access-sari@example.com", data["access_token"])

	c := cookieNamed(w, "refresh_token")
	require.NotNil(t, c)
	assert.Equal(t, "refresh-test-agent", c.Value)
	assert.True(t, c.HttpOnly)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	handler := NewAuthHandler(newTestJWT(), &stubAuthService{loginErr: auth.ErrInvalidCredentials}, nil, "", false)

	body, _ := json.Marshal(auth.LoginRequest{Email: "sari@example.com", Password: "wrong"})
	w := httptest.NewRecorder()
	handler.Login(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body)))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, cookieNamed(w, "refresh_token"))
}

func TestAuthHandler_Login_Validation(t *testing.T) {
	handler := NewAuthHandler(newTestJWT(), &stubAuthService{}, nil, "", false)

	w := httptest.NewRecorder()
	handler.Login(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"nope"}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = httptest.NewRecorder()
	handler.Login(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	svc := &stubAuthService{}
	handler := NewAuthHandler(newTestJWT(), svc, nil, "", false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "rt-1"})
	w := httptest.NewRecorder()
	handler.Logout(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"rt-1"}, svc.revoked)
	c := cookieNamed(w, "refresh_token")
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Negative(t, c.MaxAge)

	// Without a cookie logout still succeeds and revokes nothing.
	w = httptest.NewRecorder()
	handler.Logout(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, svc.revoked, 1)
}

func TestAuthHandler_RefreshToken_CookieThenBody(t *testing.T) {
	svc := &stubAuthService{}
	handler := NewAuthHandler(newTestJWT(), svc, nil, "", false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "from-cookie"})
	w := httptest.NewRecorder()
	handler.RefreshToken(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.RefreshToken(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"from-body"}`)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"from-cookie", "from-body"}, svc.refreshed)

	w = httptest.NewRecorder()
	handler.RefreshToken(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Google_Disabled(t *testing.T) {
	handler := NewAuthHandler(newTestJWT(), &stubAuthService{}, nil, "", false)

	w := httptest.NewRecorder()
	handler.LoginWithGoogle(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/oauth/google", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthHandler_LoginWithGoogle_Redirect(t *testing.T) {
	google := oauth.NewGoogleService("test-client-id", "test-client-secret", "http://localhost:8080/callback", []string{"email"})
	handler := NewAuthHandler(newTestJWT(), &stubAuthService{}, google, "http://localhost:3000", false)

	w := httptest.NewRecorder()
	handler.LoginWithGoogle(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/oauth/google", nil))

	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	state := cookieNamed(w, oauthStateCookie)
	require.NotNil(t, state)
	assert.NotEmpty(t, state.Value)
	assert.Contains(t, w.Header().Get("Location"), "state="+state.Value)
}

func TestAuthHandler_OAuthCallbackGoogle_StateMismatch(t *testing.T) {
	google := oauth.NewGoogleService("id", "secret", "http://localhost:8080/callback", []string{"email"})
	handler := NewAuthHandler(newTestJWT(), &stubAuthService{}, google, "http://localhost:3000", false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/oauth/callback/google?state=other&code=abc", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "expected"})
	w := httptest.NewRecorder()
	handler.OAuthCallbackGoogle(w, req)

	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "http://localhost:3000/auth/callback/google?error=state_mismatch", w.Header().Get("Location"))
}
