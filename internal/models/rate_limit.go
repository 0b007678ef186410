package models

import "time"

// RateLimitRecord tracks throttling state for one (identifier, action type)
// pair. There is at most one record per pair (unique constraint in storage).
type RateLimitRecord struct {
	ID             string
	Identifier     string
	Type           string
	Attempts       int
	FirstAttemptAt time.Time
	LastAttemptAt  time.Time
	BlockedUntil   *time.Time
}

// RateLimitPolicy parameterizes one guarded action.
type RateLimitPolicy struct {
	MaxAttempts int
	Window      time.Duration
	BlockFor    time.Duration
}

// RateLimitDecision is the outcome of consuming a single attempt.
// ResetTime is set on denials and names the moment the caller may retry.
type RateLimitDecision struct {
	Allowed   bool
	Attempts  int
	ResetTime *time.Time
}

// NextRateLimitState applies one attempt to an existing record and returns the
// updated record alongside the decision. The record is returned unchanged when
// an active block is in force; a denial that sets a block always places
// BlockedUntil in the future relative to now.
func NextRateLimitState(rec RateLimitRecord, now time.Time, policy RateLimitPolicy) (RateLimitRecord, RateLimitDecision) {
	if rec.BlockedUntil != nil && rec.BlockedUntil.After(now) {
		return rec, RateLimitDecision{Allowed: false, Attempts: rec.Attempts, ResetTime: rec.BlockedUntil}
	}

	// Counting window has elapsed: start a fresh one and clear any stale block.
	if rec.FirstAttemptAt.Before(now.Add(-policy.Window)) {
		rec.Attempts = 1
		rec.FirstAttemptAt = now
		rec.LastAttemptAt = now
		rec.BlockedUntil = nil
		return rec, RateLimitDecision{Allowed: true, Attempts: 1}
	}

	rec.Attempts++
	rec.LastAttemptAt = now

	if rec.Attempts >= policy.MaxAttempts {
		blockedUntil := now.Add(policy.BlockFor)
		rec.BlockedUntil = &blockedUntil
		return rec, RateLimitDecision{Allowed: false, Attempts: rec.Attempts, ResetTime: &blockedUntil}
	}

	return rec, RateLimitDecision{Allowed: true, Attempts: rec.Attempts}
}
