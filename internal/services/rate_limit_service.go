package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gatehouse/internal/metrics"
	"gatehouse/internal/models"
)

// Action types guarded by the rate limiter.
const (
	RateLimitTypeLogin  = "login"
	RateLimitTypeSignup = "signup"
)

// RateLimitStore is the persistence surface the rate limiter needs.
type RateLimitStore interface {
	Consume(ctx context.Context, identifier, actionType string, policy models.RateLimitPolicy) (*models.RateLimitDecision, error)
	Reset(ctx context.Context, identifier, actionType string) error
}

// RateLimitCheck is the caller-facing outcome of consuming one attempt.
type RateLimitCheck struct {
	Allowed   bool       `json:"allowed"`
	Attempts  int        `json:"attempts"`
	ResetTime *time.Time `json:"reset_time,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// RateLimitService throttles repeated attempts per (identifier, action type)
// pair using a sliding window with a block of twice the window length once
// the attempt ceiling is hit.
type RateLimitService struct {
	store   RateLimitStore
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewRateLimitService(store RateLimitStore, logger *slog.Logger, m *metrics.Metrics) *RateLimitService {
	return &RateLimitService{
		store:   store,
		logger:  logger,
		metrics: m,
	}
}

// Check consumes one attempt for the pair and reports whether the action may
// proceed. Non-positive maxAttempts or windowMinutes fall back to 5 attempts
// per 15 minutes.
//
// Storage errors fail open: the limiter is a hardening layer, and an outage
// in it must not lock every legitimate user out of the product. The
// credential check itself fails closed independently of this.
func (s *RateLimitService) Check(ctx context.Context, identifier, actionType string, maxAttempts, windowMinutes int) RateLimitCheck {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if windowMinutes <= 0 {
		windowMinutes = 15
	}

	window := time.Duration(windowMinutes) * time.Minute
	policy := models.RateLimitPolicy{
		MaxAttempts: maxAttempts,
		Window:      window,
		BlockFor:    window * 2,
	}

	decision, err := s.store.Consume(ctx, identifier, actionType, policy)
	if err != nil {
		s.logger.Error("rate limit check failed, allowing request",
			slog.String("action_type", actionType),
			slog.Any("error", err))
		return RateLimitCheck{Allowed: true, Attempts: 0}
	}

	if decision.Allowed {
		return RateLimitCheck{Allowed: true, Attempts: decision.Attempts}
	}

	s.metrics.RecordRateLimitDenial(actionType)
	s.logger.Warn("rate limit exceeded",
		slog.String("action_type", actionType),
		slog.Int("attempts", decision.Attempts))

	check := RateLimitCheck{
		Allowed:   false,
		Attempts:  decision.Attempts,
		ResetTime: decision.ResetTime,
	}
	if decision.ResetTime != nil {
		check.Message = fmt.Sprintf("Too many attempts. Please try again after %s.",
			decision.ResetTime.Local().Format("3:04:05 PM"))
	} else {
		check.Message = "Too many attempts. Please try again later."
	}
	return check
}

// Reset clears the pair's throttling state, typically after a successful
// authentication. Failures are logged and swallowed: a reset that does not
// land only means the user keeps a few stale attempts on the counter.
func (s *RateLimitService) Reset(ctx context.Context, identifier, actionType string) {
	if err := s.store.Reset(ctx, identifier, actionType); err != nil {
		s.logger.Error("rate limit reset failed",
			slog.String("action_type", actionType),
			slog.Any("error", err))
	}
}
