package middleware

import (
	"net/http"
	"time"

	pkghttp "gatehouse/pkg/http"

	"github.com/go-chi/httprate"
)

// RequestRateLimit caps request throughput per client IP. This is the cheap
// in-memory outer guard; the database-backed limiter behind the auth
// endpoints does the per-account accounting.
type RequestRateLimit struct {
	Requests int
	Window   time.Duration
}

// DefaultAuthRateLimit allows 10 requests per minute on the public auth
// endpoints.
func DefaultAuthRateLimit() RequestRateLimit {
	return RequestRateLimit{
		Requests: 10,
		Window:   time.Minute,
	}
}

// RateLimitByIP creates a middleware enforcing the given cap per client IP.
func RateLimitByIP(limit RequestRateLimit) func(next http.Handler) http.Handler {
	return httprate.Limit(
		limit.Requests,
		limit.Window,
		httprate.WithKeyByRealIP(),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteTooManyRequests(w, "Too many requests. Please slow down.", nil)
		}),
	)
}
