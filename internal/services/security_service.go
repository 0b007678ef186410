package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gatehouse/internal/metrics"
	"gatehouse/internal/models"
)

// LoginAttemptStore is the persistence surface for the attempt ledger.
type LoginAttemptStore interface {
	Record(ctx context.Context, attempt *models.LoginAttempt) error
	ListFailedSince(ctx context.Context, since time.Time, limit int) ([]*models.LoginAttempt, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
	CountFailedSince(ctx context.Context, since time.Time) (int, error)
	CountSuccessfulSince(ctx context.Context, since time.Time) (int, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RateLimitMaintenanceStore exposes the reporting and cleanup operations of
// the rate_limits table.
type RateLimitMaintenanceStore interface {
	CountActiveBlocks(ctx context.Context, actionType string) (int, error)
	DeleteExpiredBlocks(ctx context.Context) (int64, error)
}

// SecurityService owns the attempt ledger and the reporting/cleanup surface
// built on top of it.
type SecurityService struct {
	attempts   LoginAttemptStore
	rateLimits RateLimitMaintenanceStore
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

func NewSecurityService(attempts LoginAttemptStore, rateLimits RateLimitMaintenanceStore, logger *slog.Logger, m *metrics.Metrics) *SecurityService {
	return &SecurityService{
		attempts:   attempts,
		rateLimits: rateLimits,
		logger:     logger,
		metrics:    m,
	}
}

// RecordAttempt appends one row to the ledger. Write failures are logged and
// swallowed: the audit trail must never take the login path down with it.
func (s *SecurityService) RecordAttempt(ctx context.Context, email, ipAddress, userAgent string, success bool, failureReason *string) {
	attempt := &models.LoginAttempt{
		Email:         email,
		IPAddress:     ipAddress,
		UserAgent:     userAgent,
		Success:       success,
		FailureReason: failureReason,
	}

	if err := s.attempts.Record(ctx, attempt); err != nil {
		s.logger.Error("failed to record login attempt", slog.Any("error", err))
		return
	}

	s.metrics.RecordLoginAttempt(success)
}

// FailedAttempts lists recent failures, most recent first. Non-positive
// arguments fall back to a 24 hour lookback capped at 100 rows.
func (s *SecurityService) FailedAttempts(ctx context.Context, lookback time.Duration, limit int) ([]*models.LoginAttempt, error) {
	if lookback <= 0 {
		lookback = 24 * time.Hour
	}
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	attempts, err := s.attempts.ListFailedSince(ctx, time.Now().UTC().Add(-lookback), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list failed attempts: %w", err)
	}
	return attempts, nil
}

// Stats aggregates the ledger over a trailing window and adds the count of
// currently blocked login identifiers.
func (s *SecurityService) Stats(ctx context.Context, lookback time.Duration) (*models.SecurityStats, error) {
	if lookback <= 0 {
		lookback = 24 * time.Hour
	}
	since := time.Now().UTC().Add(-lookback)

	total, err := s.attempts.CountSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}
	failed, err := s.attempts.CountFailedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count failed attempts: %w", err)
	}
	successful, err := s.attempts.CountSuccessfulSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count successful attempts: %w", err)
	}
	blocked, err := s.rateLimits.CountActiveBlocks(ctx, RateLimitTypeLogin)
	if err != nil {
		return nil, fmt.Errorf("failed to count active blocks: %w", err)
	}

	s.metrics.SetActiveBlocks(RateLimitTypeLogin, blocked)

	return &models.SecurityStats{
		TotalAttempts:      total,
		FailedAttempts:     failed,
		SuccessfulAttempts: successful,
		BlockedCount:       blocked,
	}, nil
}

// CleanupOldAttempts removes ledger rows older than the retention period.
func (s *SecurityService) CleanupOldAttempts(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}

	removed, err := s.attempts.DeleteOlderThan(ctx, time.Now().UTC().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("failed to delete old attempts: %w", err)
	}

	s.metrics.RecordCleanupSweep("login_attempts", removed)
	if removed > 0 {
		s.logger.Info("purged old login attempts", slog.Int64("rows", removed))
	}
	return removed, nil
}

// CleanupExpiredRateLimits drops rate limit rows whose block has lapsed.
func (s *SecurityService) CleanupExpiredRateLimits(ctx context.Context) (int64, error) {
	removed, err := s.rateLimits.DeleteExpiredBlocks(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired rate limits: %w", err)
	}

	s.metrics.RecordCleanupSweep("rate_limits", removed)
	if removed > 0 {
		s.logger.Info("purged expired rate limits", slog.Int64("rows", removed))
	}
	return removed, nil
}
