package services

import (
	"context"
	"time"

	"gatehouse/internal/auth"
	"gatehouse/internal/models"
)

// MockUserRepository implements the user-facing store interfaces for testing
type MockUserRepository struct {
	GetByIDFunc          func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc       func(ctx context.Context, email string) (*models.User, error)
	CreateFunc           func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateFunc           func(ctx context.Context, id string, user *models.User) (*models.User, error)
	DeleteFunc           func(ctx context.Context, id string) error
	ListFunc             func(ctx context.Context, limit, offset int) ([]*models.User, error)
	CountFunc            func(ctx context.Context) (int, error)
	SetEmailVerifiedFunc func(ctx context.Context, id string) error
	SetTwoFactorFunc     func(ctx context.Context, id string, enabled bool, secret *string, backupCodes []string) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

func (m *MockUserRepository) SetEmailVerified(ctx context.Context, id string) error {
	if m.SetEmailVerifiedFunc != nil {
		return m.SetEmailVerifiedFunc(ctx, id)
	}
	return nil
}

func (m *MockUserRepository) SetTwoFactor(ctx context.Context, id string, enabled bool, secret *string, backupCodes []string) error {
	if m.SetTwoFactorFunc != nil {
		return m.SetTwoFactorFunc(ctx, id, enabled, secret, backupCodes)
	}
	return nil
}

// MockRateLimitStore implements RateLimitStore and RateLimitMaintenanceStore
// for testing
type MockRateLimitStore struct {
	ConsumeFunc             func(ctx context.Context, identifier, actionType string, policy models.RateLimitPolicy) (*models.RateLimitDecision, error)
	ResetFunc               func(ctx context.Context, identifier, actionType string) error
	CountActiveBlocksFunc   func(ctx context.Context, actionType string) (int, error)
	DeleteExpiredBlocksFunc func(ctx context.Context) (int64, error)
}

func (m *MockRateLimitStore) Consume(ctx context.Context, identifier, actionType string, policy models.RateLimitPolicy) (*models.RateLimitDecision, error) {
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, identifier, actionType, policy)
	}
	return &models.RateLimitDecision{Allowed: true, Attempts: 1}, nil
}

func (m *MockRateLimitStore) Reset(ctx context.Context, identifier, actionType string) error {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, identifier, actionType)
	}
	return nil
}

func (m *MockRateLimitStore) CountActiveBlocks(ctx context.Context, actionType string) (int, error) {
	if m.CountActiveBlocksFunc != nil {
		return m.CountActiveBlocksFunc(ctx, actionType)
	}
	return 0, nil
}

func (m *MockRateLimitStore) DeleteExpiredBlocks(ctx context.Context) (int64, error) {
	if m.DeleteExpiredBlocksFunc != nil {
		return m.DeleteExpiredBlocksFunc(ctx)
	}
	return 0, nil
}

// MockLoginAttemptStore implements LoginAttemptStore for testing
type MockLoginAttemptStore struct {
	RecordFunc               func(ctx context.Context, attempt *models.LoginAttempt) error
	ListFailedSinceFunc      func(ctx context.Context, since time.Time, limit int) ([]*models.LoginAttempt, error)
	CountSinceFunc           func(ctx context.Context, since time.Time) (int, error)
	CountFailedSinceFunc     func(ctx context.Context, since time.Time) (int, error)
	CountSuccessfulSinceFunc func(ctx context.Context, since time.Time) (int, error)
	DeleteOlderThanFunc      func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *MockLoginAttemptStore) Record(ctx context.Context, attempt *models.LoginAttempt) error {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, attempt)
	}
	return nil
}

func (m *MockLoginAttemptStore) ListFailedSince(ctx context.Context, since time.Time, limit int) ([]*models.LoginAttempt, error) {
	if m.ListFailedSinceFunc != nil {
		return m.ListFailedSinceFunc(ctx, since, limit)
	}
	return []*models.LoginAttempt{}, nil
}

func (m *MockLoginAttemptStore) CountSince(ctx context.Context, since time.Time) (int, error) {
	if m.CountSinceFunc != nil {
		return m.CountSinceFunc(ctx, since)
	}
	return 0, nil
}

func (m *MockLoginAttemptStore) CountFailedSince(ctx context.Context, since time.Time) (int, error) {
	if m.CountFailedSinceFunc != nil {
		return m.CountFailedSinceFunc(ctx, since)
	}
	return 0, nil
}

func (m *MockLoginAttemptStore) CountSuccessfulSince(ctx context.Context, since time.Time) (int, error) {
	if m.CountSuccessfulSinceFunc != nil {
		return m.CountSuccessfulSinceFunc(ctx, since)
	}
	return 0, nil
}

func (m *MockLoginAttemptStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.DeleteOlderThanFunc != nil {
		return m.DeleteOlderThanFunc(ctx, cutoff)
	}
	return 0, nil
}

// MockRateLimiter implements RateLimiter for testing
type MockRateLimiter struct {
	CheckFunc func(ctx context.Context, identifier, actionType string, maxAttempts, windowMinutes int) RateLimitCheck
	ResetFunc func(ctx context.Context, identifier, actionType string)
}

func (m *MockRateLimiter) Check(ctx context.Context, identifier, actionType string, maxAttempts, windowMinutes int) RateLimitCheck {
	if m.CheckFunc != nil {
		return m.CheckFunc(ctx, identifier, actionType, maxAttempts, windowMinutes)
	}
	return RateLimitCheck{Allowed: true, Attempts: 1}
}

func (m *MockRateLimiter) Reset(ctx context.Context, identifier, actionType string) {
	if m.ResetFunc != nil {
		m.ResetFunc(ctx, identifier, actionType)
	}
}

// MockAttemptRecorder implements AttemptRecorder for testing
type MockAttemptRecorder struct {
	RecordAttemptFunc func(ctx context.Context, email, ipAddress, userAgent string, success bool, failureReason *string)
}

func (m *MockAttemptRecorder) RecordAttempt(ctx context.Context, email, ipAddress, userAgent string, success bool, failureReason *string) {
	if m.RecordAttemptFunc != nil {
		m.RecordAttemptFunc(ctx, email, ipAddress, userAgent, success, failureReason)
	}
}

// MockTokenIssuer implements TokenIssuer for testing
type MockTokenIssuer struct {
	GenerateAccessTokenFunc  func(userID, email string) (string, error)
	GenerateRefreshTokenFunc func(userID, email string) (string, error)
}

func (m *MockTokenIssuer) GenerateAccessToken(userID, email string) (string, error) {
	if m.GenerateAccessTokenFunc != nil {
		return m.GenerateAccessTokenFunc(userID, email)
	}
	return "access-token", nil
}

func (m *MockTokenIssuer) GenerateRefreshToken(userID, email string) (string, error) {
	if m.GenerateRefreshTokenFunc != nil {
		return m.GenerateRefreshTokenFunc(userID, email)
	}
	return "refresh-token", nil
}

// MockCodeIssuer implements CodeIssuer for testing
type MockCodeIssuer struct {
	IssueCodeFunc func(ctx context.Context, user *models.User, codeType string) error
}

func (m *MockCodeIssuer) IssueCode(ctx context.Context, user *models.User, codeType string) error {
	if m.IssueCodeFunc != nil {
		return m.IssueCodeFunc(ctx, user, codeType)
	}
	return nil
}

// MockVerificationCodeStore implements VerificationCodeStore for testing
type MockVerificationCodeStore struct {
	CreateFunc            func(ctx context.Context, userID, email, code, codeType string, expiresAt time.Time) (*models.VerificationCode, error)
	GetValidFunc          func(ctx context.Context, email, code, codeType string) (*models.VerificationCode, error)
	MarkUsedFunc          func(ctx context.Context, id string) error
	InvalidateForUserFunc func(ctx context.Context, userID, codeType string) error
	DeleteExpiredFunc     func(ctx context.Context) (int64, error)
}

func (m *MockVerificationCodeStore) Create(ctx context.Context, userID, email, code, codeType string, expiresAt time.Time) (*models.VerificationCode, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, email, code, codeType, expiresAt)
	}
	return &models.VerificationCode{
		ID:        "code-id",
		UserID:    userID,
		Email:     email,
		Code:      code,
		Type:      codeType,
		ExpiresAt: expiresAt,
	}, nil
}

func (m *MockVerificationCodeStore) GetValid(ctx context.Context, email, code, codeType string) (*models.VerificationCode, error) {
	if m.GetValidFunc != nil {
		return m.GetValidFunc(ctx, email, code, codeType)
	}
	return nil, models.ErrNotFound
}

func (m *MockVerificationCodeStore) MarkUsed(ctx context.Context, id string) error {
	if m.MarkUsedFunc != nil {
		return m.MarkUsedFunc(ctx, id)
	}
	return nil
}

func (m *MockVerificationCodeStore) InvalidateForUser(ctx context.Context, userID, codeType string) error {
	if m.InvalidateForUserFunc != nil {
		return m.InvalidateForUserFunc(ctx, userID, codeType)
	}
	return nil
}

func (m *MockVerificationCodeStore) DeleteExpired(ctx context.Context) (int64, error) {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx)
	}
	return 0, nil
}

// MockEmailSender implements EmailSender for testing
type MockEmailSender struct {
	SendCodeEmailFunc func(ctx context.Context, email, code, purpose string, expiryMinutes int) error
}

func (m *MockEmailSender) SendCodeEmail(ctx context.Context, email, code, purpose string, expiryMinutes int) error {
	if m.SendCodeEmailFunc != nil {
		return m.SendCodeEmailFunc(ctx, email, code, purpose, expiryMinutes)
	}
	return nil
}

// MockTOTPEnroller implements TOTPEnroller for testing
type MockTOTPEnroller struct {
	GenerateEnrollmentFunc func(accountEmail string) (*auth.TOTPEnrollment, error)
	ValidateCodeFunc       func(secret, code string) bool
}

func (m *MockTOTPEnroller) GenerateEnrollment(accountEmail string) (*auth.TOTPEnrollment, error) {
	if m.GenerateEnrollmentFunc != nil {
		return m.GenerateEnrollmentFunc(accountEmail)
	}
	return &auth.TOTPEnrollment{
		Secret:      "MOCKSECRET",
		OTPAuthURL:  "otpauth://totp/test",
		QRCode:      "data:image/png;base64,",
		BackupCodes: []string{"aaaaaaaaaa", "bbbbbbbbbb"},
	}, nil
}

func (m *MockTOTPEnroller) ValidateCode(secret, code string) bool {
	if m.ValidateCodeFunc != nil {
		return m.ValidateCodeFunc(secret, code)
	}
	return false
}
