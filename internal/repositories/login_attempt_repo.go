package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gatehouse/internal/database"
	"gatehouse/internal/models"
)

// LoginAttemptRepository owns the append-only login_attempts ledger.
type LoginAttemptRepository struct {
	db *database.DB
}

func NewLoginAttemptRepository(db *database.DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: db}
}

// Record inserts one attempt. The identifier is normalized to lowercase on
// write so ledger queries and rate-limit keys agree.
func (r *LoginAttemptRepository) Record(ctx context.Context, attempt *models.LoginAttempt) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO login_attempts (email, ip_address, user_agent, success, failure_reason)
		VALUES ($1, $2, $3, $4, $5)
	`,
		strings.ToLower(attempt.Email),
		attempt.IPAddress,
		attempt.UserAgent,
		attempt.Success,
		attempt.FailureReason,
	)
	return err
}

// ListFailedSince returns failed attempts newer than since, most recent
// first.
func (r *LoginAttemptRepository) ListFailedSince(ctx context.Context, since time.Time, limit int) ([]*models.LoginAttempt, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, email, ip_address, user_agent, success, failure_reason, attempted_at
		FROM login_attempts
		WHERE success = false AND attempted_at >= $1
		ORDER BY attempted_at DESC
		LIMIT $2
	`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query login attempts: %w", err)
	}
	defer rows.Close()

	attempts := make([]*models.LoginAttempt, 0)
	for rows.Next() {
		var a models.LoginAttempt
		var userAgent *string
		if err := rows.Scan(&a.ID, &a.Email, &a.IPAddress, &userAgent, &a.Success, &a.FailureReason, &a.AttemptedAt); err != nil {
			return nil, fmt.Errorf("failed to scan login attempt: %w", err)
		}
		if userAgent != nil {
			a.UserAgent = *userAgent
		}
		attempts = append(attempts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return attempts, nil
}

// CountSince returns the number of attempts newer than since.
func (r *LoginAttemptRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM login_attempts WHERE attempted_at >= $1
	`, since).Scan(&count)
	return count, err
}

// CountFailedSince returns the number of failed attempts newer than since.
func (r *LoginAttemptRepository) CountFailedSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM login_attempts WHERE success = false AND attempted_at >= $1
	`, since).Scan(&count)
	return count, err
}

// CountSuccessfulSince returns the number of successful attempts newer than
// since.
func (r *LoginAttemptRepository) CountSuccessfulSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM login_attempts WHERE success = true AND attempted_at >= $1
	`, since).Scan(&count)
	return count, err
}

// DeleteOlderThan removes attempts older than the cutoff and reports how many
// rows went away. Maintenance-path only; deletes by predicate so it is safe
// under concurrent inserts.
func (r *LoginAttemptRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.Pool.Exec(ctx, `
		DELETE FROM login_attempts WHERE attempted_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
