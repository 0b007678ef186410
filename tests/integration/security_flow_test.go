package integration

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatehouse/internal/config"
	"gatehouse/internal/models"
	"gatehouse/internal/services"
	"gatehouse/pkg/logger"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSecurity() config.SecurityConfig {
	return config.SecurityConfig{
		MaxLoginAttempts:    5,
		LoginWindowMinutes:  15,
		MaxSignupAttempts:   10,
		SignupWindowMinutes: 60,
	}
}

// TestBruteForceLockout exercises the full credential path against a real
// database: repeated failures fill the ledger, the sixth attempt is blocked
// before the password is even checked, and a later successful login clears
// the counter.
func TestBruteForceLockout(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	testDB, err := SetupTestDatabase(ctx)
	require.NoError(t, err)
	defer testDB.Teardown(ctx)

	userRepo, attemptRepo, rateLimitRepo, _ := InitializeRepositories(testDB.DB)

	log := discardLogger()
	audit := logger.NewAuditLogger(log)
	limiter := services.NewRateLimitService(rateLimitRepo, log, nil)
	security := services.NewSecurityService(attemptRepo, rateLimitRepo, log, nil)
	authService := services.NewAuthService(
		userRepo, limiter, security,
		&services.MockTokenIssuer{}, &services.MockCodeIssuer{},
		testSecurity(), log, audit, nil,
	)

	email, password := TestUser("lockout")
	_, err = SeedUser(ctx, testDB.DB, email, password, true)
	require.NoError(t, err)

	client := services.ClientInfo{IPAddress: "203.0.113.50", UserAgent: "integration-test"}

	// Four wrong passwords consume the window without tripping the block.
	for i := 0; i < 4; i++ {
		_, err = authService.Authenticate(ctx, email, "WrongPassword1", client)
		require.ErrorIs(t, err, models.ErrUnauthorized)
	}

	// The attempt that reaches the limit is refused before the password is
	// checked, so even the right credentials are denied.
	_, err = authService.Authenticate(ctx, email, password, client)
	require.ErrorIs(t, err, models.ErrRateLimitExceeded)

	var limited *models.RateLimitedError
	require.ErrorAs(t, err, &limited)
	require.NotNil(t, limited.RetryAt)
	assert.True(t, limited.RetryAt.After(time.Now()))

	// The counter row reflects the block, with the 2x window duration.
	rec, err := rateLimitRepo.Get(ctx, email, services.RateLimitTypeLogin)
	require.NoError(t, err)
	assert.Equal(t, 5, rec.Attempts)
	require.NotNil(t, rec.BlockedUntil)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), *rec.BlockedUntil, 2*time.Minute)

	// Every attempt left exactly one ledger row: 4 failures + 1 rate_limited.
	since := time.Now().Add(-time.Hour)
	failed, err := attemptRepo.CountFailedSince(ctx, since)
	require.NoError(t, err)
	assert.Equal(t, 5, failed)

	// Clearing the block and logging in successfully resets the counter.
	require.NoError(t, rateLimitRepo.Reset(ctx, email, services.RateLimitTypeLogin))

	identity, err := authService.Authenticate(ctx, email, password, client)
	require.NoError(t, err)
	assert.Equal(t, email, identity.Email)

	_, err = rateLimitRepo.Get(ctx, email, services.RateLimitTypeLogin)
	assert.ErrorIs(t, err, models.ErrNotFound)

	success, err := attemptRepo.CountSuccessfulSince(ctx, since)
	require.NoError(t, err)
	assert.Equal(t, 1, success)
}

// TestSecurityReporting seeds ledger rows through the service layer and
// checks the aggregate view and the retention sweeps.
func TestSecurityReporting(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	testDB, err := SetupTestDatabase(ctx)
	require.NoError(t, err)
	defer testDB.Teardown(ctx)

	_, attemptRepo, rateLimitRepo, _ := InitializeRepositories(testDB.DB)

	log := discardLogger()
	security := services.NewSecurityService(attemptRepo, rateLimitRepo, log, nil)

	reason := "invalid_credentials"
	security.RecordAttempt(ctx, "alice@example.com", "203.0.113.1", "agent", false, &reason)
	security.RecordAttempt(ctx, "alice@example.com", "203.0.113.1", "agent", false, &reason)
	security.RecordAttempt(ctx, "bob@example.com", "203.0.113.2", "agent", true, nil)

	stats, err := security.Stats(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalAttempts)
	assert.Equal(t, 2, stats.FailedAttempts)
	assert.Equal(t, 1, stats.SuccessfulAttempts)
	assert.Equal(t, 0, stats.BlockedCount)

	// Newest failure first.
	rows, err := security.FailedAttempts(ctx, 24*time.Hour, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.False(t, rows[0].AttemptedAt.Before(rows[1].AttemptedAt))

	// Rows inside the retention window survive the sweep.
	removed, err := security.CleanupOldAttempts(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)

	// A row backdated past the retention cutoff is swept.
	_, err = testDB.Pool.Exec(ctx,
		"UPDATE login_attempts SET attempted_at = now() - interval '40 days' WHERE email = $1",
		"bob@example.com")
	require.NoError(t, err)

	removed, err = security.CleanupOldAttempts(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	swept, err := security.CleanupExpiredRateLimits(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), swept)
}

// TestEmailVerificationFlow registers a user, reads the issued code straight
// from the database and verifies the address with it.
func TestEmailVerificationFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	testDB, err := SetupTestDatabase(ctx)
	require.NoError(t, err)
	defer testDB.Teardown(ctx)

	userRepo, attemptRepo, rateLimitRepo, codeRepo := InitializeRepositories(testDB.DB)

	log := discardLogger()
	audit := logger.NewAuditLogger(log)
	limiter := services.NewRateLimitService(rateLimitRepo, log, nil)
	security := services.NewSecurityService(attemptRepo, rateLimitRepo, log, nil)
	verification := services.NewVerificationService(codeRepo, userRepo, &services.MockEmailSender{}, 15, log)
	authService := services.NewAuthService(
		userRepo, limiter, security,
		&services.MockTokenIssuer{}, verification,
		testSecurity(), log, audit, nil,
	)

	email, password := TestUser("verify")
	client := services.ClientInfo{IPAddress: "203.0.113.60", UserAgent: "integration-test"}

	identity, err := authService.Register(ctx, services.RegisterRequest{
		Email:    email,
		Password: password,
	}, client)
	require.NoError(t, err)

	user, err := userRepo.GetByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, identity.ID, user.ID)
	assert.False(t, user.EmailVerified)

	var code string
	err = testDB.Pool.QueryRow(ctx,
		"SELECT code FROM verification_codes WHERE email = $1 AND used = false", email,
	).Scan(&code)
	require.NoError(t, err)
	require.Len(t, code, 6)

	require.NoError(t, verification.VerifyEmail(ctx, email, code))

	user, err = userRepo.GetByEmail(ctx, email)
	require.NoError(t, err)
	assert.True(t, user.EmailVerified)

	// A consumed code is rejected on replay.
	err = verification.VerifyEmail(ctx, email, code)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrBadRequest))
}
