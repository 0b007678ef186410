package repositories

import (
	"context"
	"strings"
	"time"

	"gatehouse/internal/database"
	"gatehouse/internal/models"

	"github.com/google/uuid"
)

// VerificationCodeRepository owns the verification_codes table.
type VerificationCodeRepository struct {
	db *database.DB
}

func NewVerificationCodeRepository(db *database.DB) *VerificationCodeRepository {
	return &VerificationCodeRepository{db: db}
}

func (r *VerificationCodeRepository) Create(ctx context.Context, userID, email, code, codeType string, expiresAt time.Time) (*models.VerificationCode, error) {
	vc := &models.VerificationCode{
		ID:        uuid.New().String(),
		UserID:    userID,
		Email:     strings.ToLower(email),
		Code:      code,
		Type:      codeType,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}

	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO verification_codes (id, user_id, email, code, type, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, vc.ID, vc.UserID, vc.Email, vc.Code, vc.Type, vc.ExpiresAt, vc.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return vc, nil
}

// GetValid returns an unused, unexpired code matching (email, code, type), or
// models.ErrNotFound.
func (r *VerificationCodeRepository) GetValid(ctx context.Context, email, code, codeType string) (*models.VerificationCode, error) {
	var vc models.VerificationCode
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, user_id, email, code, type, expires_at, used, created_at
		FROM verification_codes
		WHERE email = $1 AND code = $2 AND type = $3 AND used = false
			AND expires_at > CURRENT_TIMESTAMP
		LIMIT 1
	`, strings.ToLower(email), code, codeType).Scan(
		&vc.ID, &vc.UserID, &vc.Email, &vc.Code, &vc.Type, &vc.ExpiresAt, &vc.Used, &vc.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &vc, nil
}

func (r *VerificationCodeRepository) MarkUsed(ctx context.Context, id string) error {
	result, err := r.db.Pool.Exec(ctx, `
		UPDATE verification_codes SET used = true WHERE id = $1
	`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// InvalidateForUser marks all outstanding codes of the given type as used,
// so only the most recently issued code can verify.
func (r *VerificationCodeRepository) InvalidateForUser(ctx context.Context, userID, codeType string) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE verification_codes SET used = true
		WHERE user_id = $1 AND type = $2 AND used = false
	`, userID, codeType)
	return err
}

// DeleteExpired removes expired codes and reports how many rows went away.
func (r *VerificationCodeRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.Pool.Exec(ctx, `
		DELETE FROM verification_codes WHERE expires_at < CURRENT_TIMESTAMP
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
