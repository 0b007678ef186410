package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var loginPolicy = RateLimitPolicy{
	MaxAttempts: 5,
	Window:      15 * time.Minute,
	BlockFor:    30 * time.Minute,
}

func freshRecord(now time.Time) RateLimitRecord {
	return RateLimitRecord{
		ID:             "rl-1",
		Identifier:     "user@example.com",
		Type:           "login",
		Attempts:       1,
		FirstAttemptAt: now,
		LastAttemptAt:  now,
	}
}

func TestNextRateLimitState_AllowedBelowMax(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := freshRecord(now)

	// Attempts 2..4 within the window stay allowed.
	for i := 2; i < loginPolicy.MaxAttempts; i++ {
		at := now.Add(time.Duration(i) * time.Minute)
		var decision RateLimitDecision
		rec, decision = NextRateLimitState(rec, at, loginPolicy)

		assert.True(t, decision.Allowed, "attempt %d should be allowed", i)
		assert.Equal(t, i, decision.Attempts)
		assert.Nil(t, decision.ResetTime)
		assert.Nil(t, rec.BlockedUntil)
	}
}

func TestNextRateLimitState_BlocksAtMax(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := freshRecord(now)
	rec.Attempts = 4

	at := now.Add(10 * time.Minute)
	rec, decision := NextRateLimitState(rec, at, loginPolicy)

	assert.False(t, decision.Allowed)
	assert.Equal(t, 5, decision.Attempts)
	require.NotNil(t, decision.ResetTime)
	// Block duration is double the detection window.
	assert.Equal(t, at.Add(30*time.Minute), *decision.ResetTime)
	require.NotNil(t, rec.BlockedUntil)
	assert.Equal(t, *decision.ResetTime, *rec.BlockedUntil)
}

func TestNextRateLimitState_DeniedWhileBlocked(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	blockedUntil := now.Add(30 * time.Minute)
	rec := freshRecord(now)
	rec.Attempts = 5
	rec.BlockedUntil = &blockedUntil

	// Any attempt before the block expires is denied, even if sub-intervals
	// of the window have elapsed.
	for _, offset := range []time.Duration{time.Minute, 5 * time.Minute, 29 * time.Minute} {
		next, decision := NextRateLimitState(rec, now.Add(offset), loginPolicy)

		assert.False(t, decision.Allowed, "attempt at +%s should be denied", offset)
		assert.Equal(t, 5, decision.Attempts)
		require.NotNil(t, decision.ResetTime)
		assert.Equal(t, blockedUntil, *decision.ResetTime)
		// The record is untouched while the block holds.
		assert.Equal(t, rec, next)
	}
}

func TestNextRateLimitState_ResetsAfterBlockAndWindowExpire(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	blockedUntil := now.Add(30 * time.Minute)
	rec := freshRecord(now)
	rec.Attempts = 5
	rec.BlockedUntil = &blockedUntil

	at := now.Add(31 * time.Minute)
	rec, decision := NextRateLimitState(rec, at, loginPolicy)

	assert.True(t, decision.Allowed)
	assert.Equal(t, 1, decision.Attempts)
	assert.Equal(t, 1, rec.Attempts)
	assert.Equal(t, at, rec.FirstAttemptAt)
	assert.Nil(t, rec.BlockedUntil)
}

func TestNextRateLimitState_WindowElapsedResetsCount(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := freshRecord(now)
	rec.Attempts = 4

	at := now.Add(16 * time.Minute)
	rec, decision := NextRateLimitState(rec, at, loginPolicy)

	assert.True(t, decision.Allowed)
	assert.Equal(t, 1, decision.Attempts)
	assert.Equal(t, at, rec.FirstAttemptAt)
	assert.Equal(t, at, rec.LastAttemptAt)
}

// Five failed attempts within 10 minutes: the 5th is denied with a block of
// roughly now+30m, a 6th attempt at +5m is still denied, and a retry after
// both the window and the block have expired starts a fresh window.
func TestNextRateLimitState_BruteForceScenario(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := freshRecord(start)

	var decision RateLimitDecision
	for i := 2; i <= 5; i++ {
		at := start.Add(time.Duration(i-1) * 2 * time.Minute) // attempts spread over 10 min
		rec, decision = NextRateLimitState(rec, at, loginPolicy)
	}

	require.False(t, decision.Allowed)
	fifthAt := start.Add(8 * time.Minute)
	require.NotNil(t, decision.ResetTime)
	assert.Equal(t, fifthAt.Add(30*time.Minute), *decision.ResetTime)

	// +5 minutes: still blocked.
	_, decision = NextRateLimitState(rec, fifthAt.Add(5*time.Minute), loginPolicy)
	assert.False(t, decision.Allowed)

	// +31 minutes: block and window both expired, fresh window of one.
	rec, decision = NextRateLimitState(rec, fifthAt.Add(31*time.Minute), loginPolicy)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 1, decision.Attempts)
	assert.Nil(t, rec.BlockedUntil)
}
