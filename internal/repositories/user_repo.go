package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gatehouse/internal/database"
	"gatehouse/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{pool: db.Pool}
}

const userColumns = `id, email, password_hash, first_name, last_name, profile_image,
	email_verified, two_factor_enabled, two_factor_secret, two_factor_backup_codes,
	created_at, updated_at`

// rowScanner interface for scanning user rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanUserRow handles nullable fields and populates a User model from a database row
func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User
	var backupCodes []byte

	err := scanner.Scan(
		&user.ID, &user.Email, &user.PasswordHash,
		&user.FirstName, &user.LastName, &user.ProfileImage,
		&user.EmailVerified, &user.TwoFactorEnabled, &user.TwoFactorSecret, &backupCodes,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if len(backupCodes) > 0 {
		if err := json.Unmarshal(backupCodes, &user.TwoFactorBackupCodes); err != nil {
			return nil, fmt.Errorf("failed to decode backup codes: %w", err)
		}
	}

	return &user, nil
}

func scanUserRows(rows pgx.Rows) ([]*models.User, error) {
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

func encodeBackupCodes(codes []string) (interface{}, error) {
	if codes == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(codes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup codes: %w", err)
	}
	return encoded, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return scanUserRow(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail looks a user up by normalized (lowercase) email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	return scanUserRow(r.pool.QueryRow(ctx, query, strings.ToLower(email)))
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New().String()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := fmt.Sprintf(`
		INSERT INTO users (id, email, password_hash, first_name, last_name, profile_image,
			email_verified, two_factor_enabled, two_factor_secret, two_factor_backup_codes,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING %s
	`, userColumns)

	backupCodes, err := encodeBackupCodes(user.TwoFactorBackupCodes)
	if err != nil {
		return nil, err
	}

	return scanUserRow(r.pool.QueryRow(ctx, query,
		user.ID, strings.ToLower(user.Email), user.PasswordHash,
		user.FirstName, user.LastName, user.ProfileImage,
		user.EmailVerified, user.TwoFactorEnabled, user.TwoFactorSecret, backupCodes,
		user.CreatedAt, user.UpdatedAt,
	))
}

func (r *UserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	user.UpdatedAt = time.Now()

	query := fmt.Sprintf(`
		UPDATE users
		SET email = $2, password_hash = $3, first_name = $4, last_name = $5,
			profile_image = $6, email_verified = $7, updated_at = $8
		WHERE id = $1
		RETURNING %s
	`, userColumns)

	return scanUserRow(r.pool.QueryRow(ctx, query,
		id, strings.ToLower(user.Email), user.PasswordHash,
		user.FirstName, user.LastName, user.ProfileImage,
		user.EmailVerified, user.UpdatedAt,
	))
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, userColumns)

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	return scanUserRows(rows)
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

// SetEmailVerified marks the user's email address as verified.
func (r *UserRepository) SetEmailVerified(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE users SET email_verified = true, updated_at = CURRENT_TIMESTAMP WHERE id = $1
	`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SetTwoFactor replaces the user's 2FA state in one statement. Disabling
// clears the secret and backup codes.
func (r *UserRepository) SetTwoFactor(ctx context.Context, id string, enabled bool, secret *string, backupCodes []string) error {
	encoded, err := encodeBackupCodes(backupCodes)
	if err != nil {
		return err
	}

	result, err := r.pool.Exec(ctx, `
		UPDATE users
		SET two_factor_enabled = $2, two_factor_secret = $3, two_factor_backup_codes = $4,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`, id, enabled, secret, encoded)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
