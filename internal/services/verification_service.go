package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"gatehouse/internal/models"
)

// VerificationCodeStore is the persistence surface for email codes.
type VerificationCodeStore interface {
	Create(ctx context.Context, userID, email, code, codeType string, expiresAt time.Time) (*models.VerificationCode, error)
	GetValid(ctx context.Context, email, code, codeType string) (*models.VerificationCode, error)
	MarkUsed(ctx context.Context, id string) error
	InvalidateForUser(ctx context.Context, userID, codeType string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// EmailVerifier marks a user's email as confirmed.
type EmailVerifier interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SetEmailVerified(ctx context.Context, id string) error
}

// VerificationService issues and redeems single-use email codes.
type VerificationService struct {
	codes      VerificationCodeStore
	users      EmailVerifier
	mailer     EmailSender
	expiry     time.Duration
	logger     *slog.Logger
}

func NewVerificationService(codes VerificationCodeStore, users EmailVerifier, mailer EmailSender, expiryMinutes int, log *slog.Logger) *VerificationService {
	if expiryMinutes <= 0 {
		expiryMinutes = 15
	}
	return &VerificationService{
		codes:  codes,
		users:  users,
		mailer: mailer,
		expiry: time.Duration(expiryMinutes) * time.Minute,
		logger: log,
	}
}

// IssueCode creates a fresh code for the user and emails it. Any earlier
// unused codes of the same type are invalidated first, so only the latest
// code redeems.
func (s *VerificationService) IssueCode(ctx context.Context, user *models.User, codeType string) error {
	code, err := generateNumericCode()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	if err := s.codes.InvalidateForUser(ctx, user.ID, codeType); err != nil {
		return fmt.Errorf("failed to invalidate previous codes: %w", err)
	}

	expiresAt := time.Now().UTC().Add(s.expiry)
	if _, err := s.codes.Create(ctx, user.ID, user.Email, code, codeType, expiresAt); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendCodeEmail(ctx, user.Email, code, codeType, int(s.expiry.Minutes())); err != nil {
			return fmt.Errorf("failed to deliver verification code: %w", err)
		}
	}

	return nil
}

// VerifyEmail redeems an email verification code and flags the account as
// verified. Wrong, expired and consumed codes all produce the same error.
func (s *VerificationService) VerifyEmail(ctx context.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	record, err := s.codes.GetValid(ctx, email, code, models.CodeTypeEmailVerification)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%w: invalid or expired verification code", models.ErrBadRequest)
		}
		return fmt.Errorf("failed to look up verification code: %w", err)
	}

	if err := s.codes.MarkUsed(ctx, record.ID); err != nil {
		return fmt.Errorf("failed to consume verification code: %w", err)
	}

	if err := s.users.SetEmailVerified(ctx, record.UserID); err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}

	s.logger.Info("email verified", slog.String("user_id", record.UserID))
	return nil
}

// RequestCode re-issues a verification code for an email address. Unknown
// addresses succeed silently to avoid revealing which accounts exist.
func (s *VerificationService) RequestCode(ctx context.Context, email, codeType string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	return s.IssueCode(ctx, user, codeType)
}

// CleanupExpiredCodes removes codes past their expiry.
func (s *VerificationService) CleanupExpiredCodes(ctx context.Context) (int64, error) {
	removed, err := s.codes.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired codes: %w", err)
	}
	if removed > 0 {
		s.logger.Info("purged expired verification codes", slog.Int64("rows", removed))
	}
	return removed, nil
}

// generateNumericCode returns a uniformly random 6-digit code.
func generateNumericCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
