package services

import (
	"context"
	"testing"

	"gatehouse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_GetProfile(t *testing.T) {
	ctx := context.Background()

	users := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return &models.User{
				ID:               id,
				Email:            "user@example.com",
				FirstName:        strPtr("Ada"),
				EmailVerified:    true,
				TwoFactorEnabled: true,
				TwoFactorSecret:  strPtr("SECRET"),
			}, nil
		},
	}
	svc := NewUserService(users, testLogger(), nil)

	profile, err := svc.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", profile.ID)
	assert.Equal(t, "Ada", *profile.FirstName)
	assert.True(t, profile.EmailVerified)
	assert.True(t, profile.TwoFactorEnabled)
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("applies only the provided fields", func(t *testing.T) {
		var saved *models.User
		users := &MockUserRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
				return &models.User{
					ID:        id,
					Email:     "user@example.com",
					FirstName: strPtr("Ada"),
					LastName:  strPtr("Lovelace"),
				}, nil
			},
			UpdateFunc: func(ctx context.Context, id string, user *models.User) (*models.User, error) {
				saved = user
				return user, nil
			},
		}
		svc := NewUserService(users, testLogger(), nil)

		profile, err := svc.UpdateProfile(ctx, "user-1", UpdateProfileRequest{
			FirstName: strPtr("Augusta"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Augusta", *saved.FirstName)
		assert.Equal(t, "Lovelace", *saved.LastName)
		assert.Equal(t, "Augusta", *profile.FirstName)
	})

	t.Run("missing user propagates", func(t *testing.T) {
		svc := NewUserService(&MockUserRepository{}, testLogger(), nil)

		_, err := svc.UpdateProfile(ctx, "ghost", UpdateProfileRequest{})
		require.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestUserService_ListUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("clamps limit and offset", func(t *testing.T) {
		var gotLimit, gotOffset int
		users := &MockUserRepository{
			ListFunc: func(ctx context.Context, limit, offset int) ([]*models.User, error) {
				gotLimit, gotOffset = limit, offset
				return []*models.User{{ID: "user-1", Email: "user@example.com"}}, nil
			},
			CountFunc: func(ctx context.Context) (int, error) { return 1, nil },
		}
		svc := NewUserService(users, testLogger(), nil)

		list, err := svc.ListUsers(ctx, 9999, -5)
		require.NoError(t, err)
		assert.Equal(t, 25, gotLimit)
		assert.Equal(t, 0, gotOffset)
		assert.Equal(t, 1, list.Total)
		require.Len(t, list.Users, 1)
		assert.Equal(t, "user@example.com", list.Users[0].Email)
	})
}

func TestUserService_DeleteAccount(t *testing.T) {
	ctx := context.Background()

	deleted := false
	users := &MockUserRepository{
		DeleteFunc: func(ctx context.Context, id string) error {
			deleted = true
			assert.Equal(t, "user-1", id)
			return nil
		},
	}
	svc := NewUserService(users, testLogger(), nil)

	require.NoError(t, svc.DeleteAccount(ctx, "user-1", "203.0.113.7"))
	assert.True(t, deleted)
}
