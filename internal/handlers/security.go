package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"gatehouse/internal/auth"
	"gatehouse/internal/models"
	pkghttp "gatehouse/pkg/http"
)

// SecurityServiceInterface defines the reporting and cleanup operations.
type SecurityServiceInterface interface {
	FailedAttempts(ctx context.Context, lookback time.Duration, limit int) ([]*models.LoginAttempt, error)
	Stats(ctx context.Context, lookback time.Duration) (*models.SecurityStats, error)
	CleanupOldAttempts(ctx context.Context, retention time.Duration) (int64, error)
	CleanupExpiredRateLimits(ctx context.Context) (int64, error)
}

// SecurityHandler serves the admin security dashboard endpoints.
type SecurityHandler struct {
	service       SecurityServiceInterface
	retentionDays int
}

func NewSecurityHandler(service SecurityServiceInterface, retentionDays int) *SecurityHandler {
	return &SecurityHandler{
		service:       service,
		retentionDays: retentionDays,
	}
}

// FailedAttemptResponse is one row of the failed-attempt listing, with the
// raw user agent condensed into a readable client description.
type FailedAttemptResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	IPAddress     string    `json:"ip_address"`
	Client        string    `json:"client"`
	FailureReason string    `json:"failure_reason,omitempty"`
	AttemptedAt   time.Time `json:"attempted_at"`
}

// CleanupResponse reports how many rows each sweep removed.
type CleanupResponse struct {
	LoginAttemptsRemoved int64 `json:"login_attempts_removed"`
	RateLimitsRemoved    int64 `json:"rate_limits_removed"`
}

// lookbackFromQuery reads the optional ?hours= parameter, default 24.
func lookbackFromQuery(r *http.Request) time.Duration {
	hours, err := strconv.Atoi(r.URL.Query().Get("hours"))
	if err != nil || hours <= 0 || hours > 24*90 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// Stats handles GET /admin/security/stats.
func (h *SecurityHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), lookbackFromQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, stats)
}

// FailedAttempts handles GET /admin/security/failed-attempts.
func (h *SecurityHandler) FailedAttempts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	attempts, err := h.service.FailedAttempts(r.Context(), lookbackFromQuery(r), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	rows := make([]FailedAttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		row := FailedAttemptResponse{
			ID:          a.ID,
			Email:       a.Email,
			IPAddress:   a.IPAddress,
			Client:      auth.DescribeClient(a.UserAgent),
			AttemptedAt: a.AttemptedAt,
		}
		if a.FailureReason != nil {
			row.FailureReason = *a.FailureReason
		}
		rows = append(rows, row)
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"attempts": rows,
		"count":    len(rows),
	})
}

// Cleanup handles POST /admin/security/cleanup: an on-demand run of both
// retention sweeps.
func (h *SecurityHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	retention := time.Duration(h.retentionDays) * 24 * time.Hour

	attemptsRemoved, err := h.service.CleanupOldAttempts(r.Context(), retention)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rateLimitsRemoved, err := h.service.CleanupExpiredRateLimits(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, CleanupResponse{
		LoginAttemptsRemoved: attemptsRemoved,
		RateLimitsRemoved:    rateLimitsRemoved,
	})
}
