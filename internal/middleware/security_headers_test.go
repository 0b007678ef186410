package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func noopHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSecurityHeaders(t *testing.T) {
	t.Run("sets the baseline headers", func(t *testing.T) {
		handler := SecurityHeaders(SecurityHeadersConfig{Env: "development"})(noopHandler())
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
		assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'none'")
		assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
	})

	t.Run("adds HSTS for production TLS traffic", func(t *testing.T) {
		handler := SecurityHeaders(SecurityHeadersConfig{Env: "production"})(noopHandler())
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Forwarded-Proto", "https")
		handler.ServeHTTP(rec, req)

		assert.Contains(t, rec.Header().Get("Strict-Transport-Security"), "max-age=31536000")
	})

	t.Run("no HSTS for plain http in production", func(t *testing.T) {
		handler := SecurityHeaders(SecurityHeadersConfig{Env: "production"})(noopHandler())
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

		assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
	})
}

func TestCORS(t *testing.T) {
	config := NewCORSConfig([]string{"https://app.example.com"})

	t.Run("allows configured origin", func(t *testing.T) {
		handler := CORS(config)(noopHandler())
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Origin", "https://app.example.com")
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("denies unknown origin", func(t *testing.T) {
		handler := CORS(config)(noopHandler())
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		handler.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("answers preflight without invoking the handler", func(t *testing.T) {
		called := false
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
		handler := CORS(config)(inner)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("OPTIONS", "/", nil)
		req.Header.Set("Origin", "https://app.example.com")
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.False(t, called)
	})
}

func TestRateLimitByIP(t *testing.T) {
	handler := RateLimitByIP(RequestRateLimit{Requests: 2, Window: time.Minute})(noopHandler())

	req := func() *http.Request {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "203.0.113.7:1234"
		return r
	}

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req())
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req())
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"rate_limit_exceeded","message":"Too many requests. Please slow down."}`, rec.Body.String())
}
