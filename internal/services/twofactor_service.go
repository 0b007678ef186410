package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"

	"gatehouse/internal/auth"
	"gatehouse/internal/models"
	"gatehouse/pkg/logger"
)

// TwoFactorStore is the persistence surface for 2FA state.
type TwoFactorStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	SetTwoFactor(ctx context.Context, id string, enabled bool, secret *string, backupCodes []string) error
}

// TOTPEnroller produces and validates TOTP material.
type TOTPEnroller interface {
	GenerateEnrollment(accountEmail string) (*auth.TOTPEnrollment, error)
	ValidateCode(secret, code string) bool
}

// TwoFactorService drives TOTP enrollment. A fresh secret sits disabled on
// the account until the user proves they can produce a code for it; only
// then does 2FA switch on.
type TwoFactorService struct {
	users  TwoFactorStore
	totp   TOTPEnroller
	logger *slog.Logger
	audit  *logger.AuditLogger
}

func NewTwoFactorService(users TwoFactorStore, totp TOTPEnroller, log *slog.Logger, audit *logger.AuditLogger) *TwoFactorService {
	return &TwoFactorService{
		users:  users,
		totp:   totp,
		logger: log,
		audit:  audit,
	}
}

// Setup generates a pending enrollment for the account. Calling it again
// replaces any earlier pending secret; it refuses to touch an account with
// 2FA already on.
func (s *TwoFactorService) Setup(ctx context.Context, userID string) (*auth.TOTPEnrollment, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TwoFactorEnabled {
		return nil, fmt.Errorf("%w: two-factor authentication is already enabled", models.ErrConflict)
	}

	enrollment, err := s.totp.GenerateEnrollment(user.Email)
	if err != nil {
		return nil, err
	}

	if err := s.users.SetTwoFactor(ctx, userID, false, &enrollment.Secret, enrollment.BackupCodes); err != nil {
		return nil, fmt.Errorf("failed to store pending enrollment: %w", err)
	}

	return enrollment, nil
}

// Enable confirms a pending enrollment with a live code and switches 2FA on.
func (s *TwoFactorService) Enable(ctx context.Context, userID, code string, ipAddress string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.TwoFactorEnabled {
		return fmt.Errorf("%w: two-factor authentication is already enabled", models.ErrConflict)
	}
	if user.TwoFactorSecret == nil {
		return fmt.Errorf("%w: no pending two-factor enrollment", models.ErrBadRequest)
	}

	if !s.totp.ValidateCode(*user.TwoFactorSecret, code) {
		return fmt.Errorf("%w: invalid verification code", models.ErrBadRequest)
	}

	if err := s.users.SetTwoFactor(ctx, userID, true, user.TwoFactorSecret, user.TwoFactorBackupCodes); err != nil {
		return fmt.Errorf("failed to enable two-factor: %w", err)
	}

	if s.audit != nil {
		s.audit.LogAccountAction("two_factor_enabled", userID, ipAddress, nil)
	}
	s.logger.Info("two-factor enabled", slog.String("user_id", userID))
	return nil
}

// Disable turns 2FA off after the user proves possession with a live code or
// an unused backup code. The secret and backup codes are discarded.
func (s *TwoFactorService) Disable(ctx context.Context, userID, code string, ipAddress string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.TwoFactorEnabled || user.TwoFactorSecret == nil {
		return fmt.Errorf("%w: two-factor authentication is not enabled", models.ErrBadRequest)
	}

	ok, _ := s.checkCode(user, code)
	if !ok {
		return fmt.Errorf("%w: invalid verification code", models.ErrBadRequest)
	}

	if err := s.users.SetTwoFactor(ctx, userID, false, nil, nil); err != nil {
		return fmt.Errorf("failed to disable two-factor: %w", err)
	}

	if s.audit != nil {
		s.audit.LogAccountAction("two_factor_disabled", userID, ipAddress, nil)
	}
	s.logger.Info("two-factor disabled", slog.String("user_id", userID))
	return nil
}

// VerifyCode validates a login-time 2FA code. A backup code that matches is
// consumed so it cannot be replayed.
func (s *TwoFactorService) VerifyCode(ctx context.Context, userID, code string) (bool, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if !user.TwoFactorEnabled || user.TwoFactorSecret == nil {
		return false, fmt.Errorf("%w: two-factor authentication is not enabled", models.ErrBadRequest)
	}

	ok, remaining := s.checkCode(user, code)
	if !ok {
		return false, nil
	}

	if remaining != nil {
		if err := s.users.SetTwoFactor(ctx, userID, true, user.TwoFactorSecret, remaining); err != nil {
			return false, fmt.Errorf("failed to consume backup code: %w", err)
		}
		s.logger.Warn("backup code consumed",
			slog.String("user_id", userID),
			slog.Int("remaining", len(remaining)))
	}

	return true, nil
}

// checkCode accepts either a live TOTP code or a backup code. When a backup
// code matched, the second return value holds the codes that remain.
func (s *TwoFactorService) checkCode(user *models.User, code string) (bool, []string) {
	if s.totp.ValidateCode(*user.TwoFactorSecret, code) {
		return true, nil
	}

	for i, backup := range user.TwoFactorBackupCodes {
		if subtle.ConstantTimeCompare([]byte(backup), []byte(code)) == 1 {
			remaining := make([]string, 0, len(user.TwoFactorBackupCodes)-1)
			remaining = append(remaining, user.TwoFactorBackupCodes[:i]...)
			remaining = append(remaining, user.TwoFactorBackupCodes[i+1:]...)
			return true, remaining
		}
	}

	return false, nil
}
