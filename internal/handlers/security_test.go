package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gatehouse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chromeWindowsUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func TestSecurityHandler_Stats(t *testing.T) {
	t.Run("returns aggregated stats", func(t *testing.T) {
		svc := &MockSecurityService{
			StatsFunc: func(ctx context.Context, lookback time.Duration) (*models.SecurityStats, error) {
				assert.Equal(t, 24*time.Hour, lookback)
				return &models.SecurityStats{
					TotalAttempts:      100,
					FailedAttempts:     30,
					SuccessfulAttempts: 70,
					BlockedCount:       2,
				}, nil
			},
		}
		h := NewSecurityHandler(svc, 30)

		rec := httptest.NewRecorder()
		h.Stats(rec, httptest.NewRequest("GET", "/admin/security/stats", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var stats models.SecurityStats
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
		assert.Equal(t, 100, stats.TotalAttempts)
		assert.Equal(t, 2, stats.BlockedCount)
	})

	t.Run("honors the hours query parameter", func(t *testing.T) {
		var gotLookback time.Duration
		svc := &MockSecurityService{
			StatsFunc: func(ctx context.Context, lookback time.Duration) (*models.SecurityStats, error) {
				gotLookback = lookback
				return &models.SecurityStats{}, nil
			},
		}
		h := NewSecurityHandler(svc, 30)

		rec := httptest.NewRecorder()
		h.Stats(rec, httptest.NewRequest("GET", "/admin/security/stats?hours=72", nil))
		assert.Equal(t, 72*time.Hour, gotLookback)
	})

	t.Run("nonsense hours fall back to 24", func(t *testing.T) {
		var gotLookback time.Duration
		svc := &MockSecurityService{
			StatsFunc: func(ctx context.Context, lookback time.Duration) (*models.SecurityStats, error) {
				gotLookback = lookback
				return &models.SecurityStats{}, nil
			},
		}
		h := NewSecurityHandler(svc, 30)

		rec := httptest.NewRecorder()
		h.Stats(rec, httptest.NewRequest("GET", "/admin/security/stats?hours=-5", nil))
		assert.Equal(t, 24*time.Hour, gotLookback)
	})
}

func TestSecurityHandler_FailedAttempts(t *testing.T) {
	reason := models.FailureReasonInvalidCredentials
	attemptedAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	svc := &MockSecurityService{
		FailedAttemptsFunc: func(ctx context.Context, lookback time.Duration, limit int) ([]*models.LoginAttempt, error) {
			return []*models.LoginAttempt{
				{
					ID:            "attempt-1",
					Email:         "user@example.com",
					IPAddress:     "203.0.113.7",
					UserAgent:     chromeWindowsUA,
					FailureReason: &reason,
					AttemptedAt:   attemptedAt,
				},
			}, nil
		},
	}
	h := NewSecurityHandler(svc, 30)

	rec := httptest.NewRecorder()
	h.FailedAttempts(rec, httptest.NewRequest("GET", "/admin/security/failed-attempts?limit=10", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Attempts []FailedAttemptResponse `json:"attempts"`
		Count    int                     `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "user@example.com", resp.Attempts[0].Email)
	assert.Equal(t, models.FailureReasonInvalidCredentials, resp.Attempts[0].FailureReason)
	assert.Contains(t, resp.Attempts[0].Client, "Chrome")
}

func TestSecurityHandler_Cleanup(t *testing.T) {
	t.Run("runs both sweeps and reports row counts", func(t *testing.T) {
		var gotRetention time.Duration
		svc := &MockSecurityService{
			CleanupOldAttemptsFunc: func(ctx context.Context, retention time.Duration) (int64, error) {
				gotRetention = retention
				return 15, nil
			},
			CleanupExpiredRateLimitsFunc: func(ctx context.Context) (int64, error) {
				return 4, nil
			},
		}
		h := NewSecurityHandler(svc, 30)

		rec := httptest.NewRecorder()
		h.Cleanup(rec, httptest.NewRequest("POST", "/admin/security/cleanup", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 30*24*time.Hour, gotRetention)

		var resp CleanupResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, int64(15), resp.LoginAttemptsRemoved)
		assert.Equal(t, int64(4), resp.RateLimitsRemoved)
	})
}
