package handlers

import (
	"context"
	"time"

	internalauth "gatehouse/internal/auth"
	"gatehouse/internal/models"
	"gatehouse/internal/services"
)

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc    func(ctx context.Context, email, password string, client services.ClientInfo) (*services.AuthResponse, error)
	RegisterFunc func(ctx context.Context, req services.RegisterRequest, client services.ClientInfo) (*models.Identity, error)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string, client services.ClientInfo) (*services.AuthResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password, client)
	}
	return nil, models.ErrUnauthorized
}

func (m *MockAuthService) Register(ctx context.Context, req services.RegisterRequest, client services.ClientInfo) (*models.Identity, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req, client)
	}
	return nil, models.ErrInternalServer
}

// MockVerificationService implements VerificationServiceInterface for testing
type MockVerificationService struct {
	VerifyEmailFunc func(ctx context.Context, email, code string) error
	RequestCodeFunc func(ctx context.Context, email, codeType string) error
}

func (m *MockVerificationService) VerifyEmail(ctx context.Context, email, code string) error {
	if m.VerifyEmailFunc != nil {
		return m.VerifyEmailFunc(ctx, email, code)
	}
	return nil
}

func (m *MockVerificationService) RequestCode(ctx context.Context, email, codeType string) error {
	if m.RequestCodeFunc != nil {
		return m.RequestCodeFunc(ctx, email, codeType)
	}
	return nil
}

// MockSecurityService implements SecurityServiceInterface for testing
type MockSecurityService struct {
	FailedAttemptsFunc           func(ctx context.Context, lookback time.Duration, limit int) ([]*models.LoginAttempt, error)
	StatsFunc                    func(ctx context.Context, lookback time.Duration) (*models.SecurityStats, error)
	CleanupOldAttemptsFunc       func(ctx context.Context, retention time.Duration) (int64, error)
	CleanupExpiredRateLimitsFunc func(ctx context.Context) (int64, error)
}

func (m *MockSecurityService) FailedAttempts(ctx context.Context, lookback time.Duration, limit int) ([]*models.LoginAttempt, error) {
	if m.FailedAttemptsFunc != nil {
		return m.FailedAttemptsFunc(ctx, lookback, limit)
	}
	return []*models.LoginAttempt{}, nil
}

func (m *MockSecurityService) Stats(ctx context.Context, lookback time.Duration) (*models.SecurityStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, lookback)
	}
	return &models.SecurityStats{}, nil
}

func (m *MockSecurityService) CleanupOldAttempts(ctx context.Context, retention time.Duration) (int64, error) {
	if m.CleanupOldAttemptsFunc != nil {
		return m.CleanupOldAttemptsFunc(ctx, retention)
	}
	return 0, nil
}

func (m *MockSecurityService) CleanupExpiredRateLimits(ctx context.Context) (int64, error) {
	if m.CleanupExpiredRateLimitsFunc != nil {
		return m.CleanupExpiredRateLimitsFunc(ctx)
	}
	return 0, nil
}

// MockUserService implements UserServiceInterface for testing
type MockUserService struct {
	GetProfileFunc    func(ctx context.Context, userID string) (*services.UserProfile, error)
	UpdateProfileFunc func(ctx context.Context, userID string, req services.UpdateProfileRequest) (*services.UserProfile, error)
	DeleteAccountFunc func(ctx context.Context, userID, ipAddress string) error
	ListUsersFunc     func(ctx context.Context, limit, offset int) (*services.UserList, error)
}

func (m *MockUserService) GetProfile(ctx context.Context, userID string) (*services.UserProfile, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, userID)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID string, req services.UpdateProfileRequest) (*services.UserProfile, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, userID, req)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserService) DeleteAccount(ctx context.Context, userID, ipAddress string) error {
	if m.DeleteAccountFunc != nil {
		return m.DeleteAccountFunc(ctx, userID, ipAddress)
	}
	return nil
}

func (m *MockUserService) ListUsers(ctx context.Context, limit, offset int) (*services.UserList, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx, limit, offset)
	}
	return &services.UserList{}, nil
}

// MockTwoFactorService implements TwoFactorServiceInterface for testing
type MockTwoFactorService struct {
	SetupFunc   func(ctx context.Context, userID string) (*internalauth.TOTPEnrollment, error)
	EnableFunc  func(ctx context.Context, userID, code, ipAddress string) error
	DisableFunc func(ctx context.Context, userID, code, ipAddress string) error
}

func (m *MockTwoFactorService) Setup(ctx context.Context, userID string) (*internalauth.TOTPEnrollment, error) {
	if m.SetupFunc != nil {
		return m.SetupFunc(ctx, userID)
	}
	return &internalauth.TOTPEnrollment{Secret: "MOCKSECRET"}, nil
}

func (m *MockTwoFactorService) Enable(ctx context.Context, userID, code, ipAddress string) error {
	if m.EnableFunc != nil {
		return m.EnableFunc(ctx, userID, code, ipAddress)
	}
	return nil
}

func (m *MockTwoFactorService) Disable(ctx context.Context, userID, code, ipAddress string) error {
	if m.DisableFunc != nil {
		return m.DisableFunc(ctx, userID, code, ipAddress)
	}
	return nil
}
