package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gatehouse/internal/config"
	"gatehouse/internal/metrics"
	"gatehouse/internal/models"
	"gatehouse/pkg/auth"
	"gatehouse/pkg/logger"

	"golang.org/x/crypto/bcrypt"
)

// UserStore is the persistence surface the auth flows need.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
}

// RateLimiter throttles attempts per (identifier, action type) pair.
type RateLimiter interface {
	Check(ctx context.Context, identifier, actionType string, maxAttempts, windowMinutes int) RateLimitCheck
	Reset(ctx context.Context, identifier, actionType string)
}

// AttemptRecorder appends to the login attempt ledger.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, email, ipAddress, userAgent string, success bool, failureReason *string)
}

// TokenIssuer mints session tokens for an authenticated identity.
type TokenIssuer interface {
	GenerateAccessToken(userID, email string) (string, error)
	GenerateRefreshToken(userID, email string) (string, error)
}

// CodeIssuer creates and delivers a verification code for a user.
type CodeIssuer interface {
	IssueCode(ctx context.Context, user *models.User, codeType string) error
}

// ClientInfo identifies the caller of an auth operation for the audit trail
// and for IP-keyed throttling.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// RegisterRequest carries the fields accepted at signup.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name" validate:"omitempty,max=100"`
	LastName  string `json:"last_name" validate:"omitempty,max=100"`
}

// AuthResponse is returned by a successful login.
type AuthResponse struct {
	User         *models.Identity `json:"user"`
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
}

// uniformAuthError is the single error surfaced for every credential
// failure. Unknown email, wrong password and storage trouble are
// indistinguishable to the caller, which keeps account enumeration off the
// table.
var uniformAuthError = fmt.Errorf("%w: invalid email or password", models.ErrUnauthorized)

// AuthService implements registration and credential verification.
type AuthService struct {
	users    UserStore
	limiter  RateLimiter
	recorder AttemptRecorder
	tokens   TokenIssuer
	codes    CodeIssuer
	security config.SecurityConfig
	logger   *slog.Logger
	audit    *logger.AuditLogger
	metrics  *metrics.Metrics
}

func NewAuthService(
	users UserStore,
	limiter RateLimiter,
	recorder AttemptRecorder,
	tokens TokenIssuer,
	codes CodeIssuer,
	security config.SecurityConfig,
	log *slog.Logger,
	audit *logger.AuditLogger,
	m *metrics.Metrics,
) *AuthService {
	return &AuthService{
		users:    users,
		limiter:  limiter,
		recorder: recorder,
		tokens:   tokens,
		codes:    codes,
		security: security,
		logger:   log,
		audit:    audit,
		metrics:  m,
	}
}

// Authenticate verifies an email/password pair. Every path through this
// method writes exactly one ledger row, and every failure surfaces the same
// uniform error regardless of cause.
//
// The sequence is fixed: rate limit first (so a blocked caller cannot probe
// whether an account exists), then user fetch, then hash comparison. A
// storage failure on the user fetch denies the login; only the rate limiter
// is allowed to fail open.
func (s *AuthService) Authenticate(ctx context.Context, email, password string, client ClientInfo) (*models.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	check := s.limiter.Check(ctx, email, RateLimitTypeLogin, s.security.MaxLoginAttempts, s.security.LoginWindowMinutes)
	if !check.Allowed {
		reason := models.FailureReasonRateLimited
		s.recorder.RecordAttempt(ctx, email, client.IPAddress, client.UserAgent, false, &reason)
		s.auditAttempt(email, client, false, reason)
		return nil, &models.RateLimitedError{RetryAt: check.ResetTime, Message: check.Message}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("user lookup failed during authentication", slog.Any("error", err))
		}
		return nil, s.failAuthentication(ctx, email, client)
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.logger.Error("password comparison failed", slog.Any("error", err))
		}
		return nil, s.failAuthentication(ctx, email, client)
	}

	s.recorder.RecordAttempt(ctx, email, client.IPAddress, client.UserAgent, true, nil)
	s.limiter.Reset(ctx, email, RateLimitTypeLogin)
	s.auditAttempt(email, client, true, "")

	return user.PublicIdentity(), nil
}

// failAuthentication records the single failure row and returns the uniform
// error.
func (s *AuthService) failAuthentication(ctx context.Context, email string, client ClientInfo) error {
	reason := models.FailureReasonInvalidCredentials
	s.recorder.RecordAttempt(ctx, email, client.IPAddress, client.UserAgent, false, &reason)
	s.auditAttempt(email, client, false, reason)
	return uniformAuthError
}

// Login authenticates and, on success, mints a session token pair.
func (s *AuthService) Login(ctx context.Context, email, password string, client ClientInfo) (*AuthResponse, error) {
	identity, err := s.Authenticate(ctx, email, password, client)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.tokens.GenerateAccessToken(identity.ID, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(identity.ID, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		User:         identity,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Register creates an account. Signups are throttled per caller IP so one
// host cannot mass-create accounts; the email itself is only revealed as
// taken via the generic conflict error.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest, client ClientInfo) (*models.Identity, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	check := s.limiter.Check(ctx, client.IPAddress, RateLimitTypeSignup, s.security.MaxSignupAttempts, s.security.SignupWindowMinutes)
	if !check.Allowed {
		return nil, &models.RateLimitedError{RetryAt: check.ResetTime, Message: check.Message}
	}

	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrBadRequest, err.Error())
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: passwordHash,
	}
	if req.FirstName != "" {
		user.FirstName = &req.FirstName
	}
	if req.LastName != "" {
		user.LastName = &req.LastName
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("%w: an account with this email already exists", models.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.RecordUserCreated()
	if s.audit != nil {
		s.audit.LogAccountAction("registered", created.ID, client.IPAddress, nil)
	}

	if s.codes != nil {
		if err := s.codes.IssueCode(ctx, created, models.CodeTypeEmailVerification); err != nil {
			// The account exists; verification can be re-requested later.
			s.logger.Error("failed to issue verification code at signup",
				slog.String("user_id", created.ID),
				slog.Any("error", err))
		}
	}

	return created.PublicIdentity(), nil
}

func (s *AuthService) auditAttempt(email string, client ClientInfo, success bool, failureReason string) {
	if s.audit == nil {
		return
	}
	s.audit.LogLoginAttempt(logger.AuditEvent{
		EventType:     "login",
		Email:         email,
		IPAddress:     client.IPAddress,
		UserAgent:     client.UserAgent,
		Success:       success,
		FailureReason: failureReason,
	})
}
