package models

import "time"

// Failure reasons recorded with unsuccessful login attempts.
const (
	FailureReasonInvalidCredentials = "invalid_credentials"
	FailureReasonRateLimited        = "rate_limited"
)

// LoginAttempt is one row of the append-only authentication audit trail.
// Rows are never updated; they are removed only by the retention sweep.
type LoginAttempt struct {
	ID            string
	Email         string
	IPAddress     string
	UserAgent     string
	Success       bool
	FailureReason *string
	AttemptedAt   time.Time
}

// SecurityStats aggregates the attempt ledger over a trailing window for
// the admin dashboard.
type SecurityStats struct {
	TotalAttempts      int `json:"total_attempts"`
	FailedAttempts     int `json:"failed_attempts"`
	SuccessfulAttempts int `json:"successful_attempts"`
	BlockedCount       int `json:"blocked_count"`
}
