package services

import (
	"context"
	"fmt"
	"log/slog"

	"gatehouse/internal/models"
	"gatehouse/pkg/logger"
)

// UserManagementStore is the persistence surface for account management.
type UserManagementStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
}

// UpdateProfileRequest carries the fields a user may change on their own
// account. Email and password changes go through dedicated verified flows.
type UpdateProfileRequest struct {
	FirstName    *string `json:"first_name" validate:"omitempty,max=100"`
	LastName     *string `json:"last_name" validate:"omitempty,max=100"`
	ProfileImage *string `json:"profile_image" validate:"omitempty,url,max=2048"`
}

// UserProfile is the self-view of an account.
type UserProfile struct {
	ID               string  `json:"id"`
	Email            string  `json:"email"`
	FirstName        *string `json:"first_name,omitempty"`
	LastName         *string `json:"last_name,omitempty"`
	ProfileImage     *string `json:"profile_image,omitempty"`
	EmailVerified    bool    `json:"email_verified"`
	TwoFactorEnabled bool    `json:"two_factor_enabled"`
}

// UserList is a page of accounts for the admin surface.
type UserList struct {
	Users  []*UserProfile `json:"users"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// UserService implements account management.
type UserService struct {
	users  UserManagementStore
	logger *slog.Logger
	audit  *logger.AuditLogger
}

func NewUserService(users UserManagementStore, log *slog.Logger, audit *logger.AuditLogger) *UserService {
	return &UserService{
		users:  users,
		logger: log,
		audit:  audit,
	}
}

func profileOf(u *models.User) *UserProfile {
	return &UserProfile{
		ID:               u.ID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		ProfileImage:     u.ProfileImage,
		EmailVerified:    u.EmailVerified,
		TwoFactorEnabled: u.TwoFactorEnabled,
	}
}

// GetProfile returns the self-view of an account.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*UserProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profileOf(user), nil
}

// UpdateProfile applies the editable profile fields. Nil request fields are
// left unchanged.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*UserProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = req.FirstName
	}
	if req.LastName != nil {
		user.LastName = req.LastName
	}
	if req.ProfileImage != nil {
		user.ProfileImage = req.ProfileImage
	}

	updated, err := s.users.Update(ctx, userID, user)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return profileOf(updated), nil
}

// DeleteAccount removes an account and everything keyed to it.
func (s *UserService) DeleteAccount(ctx context.Context, userID, ipAddress string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}

	if s.audit != nil {
		s.audit.LogAccountAction("deleted", userID, ipAddress, nil)
	}
	s.logger.Info("account deleted", slog.String("user_id", userID))
	return nil
}

// ListUsers returns a page of accounts for the admin surface. Limits are
// clamped to keep one request from dragging the whole table over the wire.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) (*UserList, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	profiles := make([]*UserProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, profileOf(u))
	}

	return &UserList{
		Users:  profiles,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}
