package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenManager() *TokenManager {
	return NewTokenManager("test-secret-at-least-16", 15*time.Minute, 24*time.Hour)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	tm := newTestTokenManager()
	handler := AuthMiddleware(tm)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	tm := newTestTokenManager()
	handler := AuthMiddleware(tm)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Token abc123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	tm := newTestTokenManager()
	token, err := tm.GenerateAccessToken("user-1", "user@example.com")
	require.NoError(t, err)

	var sawClaims bool
	handler := AuthMiddleware(tm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetUserFromContext(r)
		require.NotNil(t, claims)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, "user@example.com", claims.Email)
		sawClaims = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, sawClaims)
}

func TestAuthMiddleware_RejectsRefreshToken(t *testing.T) {
	tm := newTestTokenManager()
	token, err := tm.GenerateRefreshToken("user-1", "user@example.com")
	require.NoError(t, err)

	handler := AuthMiddleware(tm)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_RejectsTamperedToken(t *testing.T) {
	tm := newTestTokenManager()
	other := NewTokenManager("a-different-secret-value", 15*time.Minute, 24*time.Hour)
	token, err := other.GenerateAccessToken("user-1", "user@example.com")
	require.NoError(t, err)

	handler := AuthMiddleware(tm)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	tm := newTestTokenManager()
	chain := func(email string) *httptest.ResponseRecorder {
		token, err := tm.GenerateAccessToken("user-1", email)
		require.NoError(t, err)

		handler := AuthMiddleware(tm)(RequireAdmin("admin@example.com")(okHandler()))
		req := httptest.NewRequest(http.MethodGet, "/admin/security/stats", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, chain("admin@example.com").Code)
	assert.Equal(t, http.StatusOK, chain("Admin@Example.com").Code)
	assert.Equal(t, http.StatusForbidden, chain("user@example.com").Code)
}

func TestRequireAdmin_NoAdminConfigured(t *testing.T) {
	tm := newTestTokenManager()
	token, err := tm.GenerateAccessToken("user-1", "user@example.com")
	require.NoError(t, err)

	handler := AuthMiddleware(tm)(RequireAdmin("")(okHandler()))
	req := httptest.NewRequest(http.MethodGet, "/admin/security/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
