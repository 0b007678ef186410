package repositories

import (
	"context"
	"errors"
	"time"

	"gatehouse/internal/database"
	"gatehouse/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RateLimitRepository owns the rate_limits table. Consume runs the whole
// read-evaluate-write cycle inside one transaction with the row locked, so
// concurrent attempts against the same (identifier, type) pair account
// exactly once instead of racing between read and write.
type RateLimitRepository struct {
	db *database.DB
}

func NewRateLimitRepository(db *database.DB) *RateLimitRepository {
	return &RateLimitRepository{db: db}
}

const selectRateLimitForUpdate = `
	SELECT id, identifier, type, attempts, first_attempt_at, last_attempt_at, blocked_until
	FROM rate_limits
	WHERE identifier = $1 AND type = $2
	FOR UPDATE
`

// Consume records one attempt for the pair and returns the throttling
// decision.
func (r *RateLimitRepository) Consume(ctx context.Context, identifier, actionType string, policy models.RateLimitPolicy) (*models.RateLimitDecision, error) {
	now := time.Now().UTC()
	var decision models.RateLimitDecision

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var rec models.RateLimitRecord
		err := tx.QueryRow(ctx, selectRateLimitForUpdate, identifier, actionType).Scan(
			&rec.ID, &rec.Identifier, &rec.Type, &rec.Attempts,
			&rec.FirstAttemptAt, &rec.LastAttemptAt, &rec.BlockedUntil,
		)
		if errors.Is(err, pgx.ErrNoRows) {
			return r.consumeFirst(ctx, tx, identifier, actionType, now, policy, &decision)
		}
		if err != nil {
			return err
		}

		next, d := models.NextRateLimitState(rec, now, policy)
		decision = d

		// An active block leaves the record untouched.
		if !d.Allowed && rec.BlockedUntil != nil && rec.BlockedUntil.After(now) {
			return nil
		}

		_, err = tx.Exec(ctx, `
			UPDATE rate_limits
			SET attempts = $2, first_attempt_at = $3, last_attempt_at = $4, blocked_until = $5
			WHERE id = $1
		`, rec.ID, next.Attempts, next.FirstAttemptAt, next.LastAttemptAt, next.BlockedUntil)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &decision, nil
}

// consumeFirst handles the no-record path. The upsert keeps accounting exact
// when two first attempts race on the unique (identifier, type) key: the
// loser of the insert race lands on the increment branch instead of failing.
func (r *RateLimitRepository) consumeFirst(ctx context.Context, tx pgx.Tx, identifier, actionType string, now time.Time, policy models.RateLimitPolicy, decision *models.RateLimitDecision) error {
	var attempts int
	var blockedUntil *time.Time
	err := tx.QueryRow(ctx, `
		INSERT INTO rate_limits (id, identifier, type, attempts, first_attempt_at, last_attempt_at)
		VALUES ($1, $2, $3, 1, $4, $4)
		ON CONFLICT (identifier, type) DO UPDATE
		SET attempts = rate_limits.attempts + 1, last_attempt_at = EXCLUDED.last_attempt_at
		RETURNING attempts, blocked_until
	`, uuid.New().String(), identifier, actionType, now).Scan(&attempts, &blockedUntil)
	if err != nil {
		return err
	}

	if blockedUntil != nil && blockedUntil.After(now) {
		*decision = models.RateLimitDecision{Allowed: false, Attempts: attempts, ResetTime: blockedUntil}
		return nil
	}

	if attempts >= policy.MaxAttempts {
		until := now.Add(policy.BlockFor)
		_, err = tx.Exec(ctx, `
			UPDATE rate_limits SET blocked_until = $3
			WHERE identifier = $1 AND type = $2
		`, identifier, actionType, until)
		if err != nil {
			return err
		}
		*decision = models.RateLimitDecision{Allowed: false, Attempts: attempts, ResetTime: &until}
		return nil
	}

	*decision = models.RateLimitDecision{Allowed: true, Attempts: attempts}
	return nil
}

// Get returns the record for the pair, or models.ErrNotFound.
func (r *RateLimitRepository) Get(ctx context.Context, identifier, actionType string) (*models.RateLimitRecord, error) {
	var rec models.RateLimitRecord
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, identifier, type, attempts, first_attempt_at, last_attempt_at, blocked_until
		FROM rate_limits
		WHERE identifier = $1 AND type = $2
	`, identifier, actionType).Scan(
		&rec.ID, &rec.Identifier, &rec.Type, &rec.Attempts,
		&rec.FirstAttemptAt, &rec.LastAttemptAt, &rec.BlockedUntil,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &rec, nil
}

// Reset deletes the record for the pair. Deleting an absent record is a no-op.
func (r *RateLimitRepository) Reset(ctx context.Context, identifier, actionType string) error {
	_, err := r.db.Pool.Exec(ctx, `
		DELETE FROM rate_limits WHERE identifier = $1 AND type = $2
	`, identifier, actionType)
	return err
}

// CountActiveBlocks counts pairs of the given type whose block is still in
// force.
func (r *RateLimitRepository) CountActiveBlocks(ctx context.Context, actionType string) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM rate_limits
		WHERE type = $1 AND blocked_until IS NOT NULL AND blocked_until > CURRENT_TIMESTAMP
	`, actionType).Scan(&count)
	return count, err
}

// DeleteExpiredBlocks removes records whose block has lapsed. Safe to run
// concurrently with live traffic.
func (r *RateLimitRepository) DeleteExpiredBlocks(ctx context.Context) (int64, error) {
	result, err := r.db.Pool.Exec(ctx, `
		DELETE FROM rate_limits
		WHERE blocked_until IS NOT NULL AND blocked_until < CURRENT_TIMESTAMP
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
