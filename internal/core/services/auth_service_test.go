package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive-backend/internal/core/domain"
	apperrors "github.com/taskhive/taskhive-backend/internal/core/errors"
	"github.com/taskhive/taskhive-backend/internal/core/mocks"
	"github.com/taskhive/taskhive-backend/internal/core/services"
)

func validRegistration() domain.UserRegistrationParams {
	return domain.UserRegistrationParams{
		Username: "jdoe",
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Password: "Str0ngPassword",
	}
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("success", func(t *testing.T) {
		mockRepo := mocks.NewMockUserRepository()
		svc := services.NewAuthService(mockRepo, orgID)

		params := validRegistration()

		mockRepo.On("GetByEmail", ctx, params.Email).Return(nil, apperrors.ErrUserNotFound)
		mockRepo.On("GetByUsername", ctx, params.Username).Return(nil, apperrors.ErrUserNotFound)
		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).
			Return(&domain.User{
				ID:             uuid.New(),
				OrganizationID: orgID,
				Username:       params.Username,
				FullName:       params.FullName,
				Email:          params.Email,
				IsActive:       true,
			}, nil)

		user, err := svc.Register(ctx, params, orgID)

		require.NoError(t, err)
		assert.Equal(t, params.Email, user.Email)
		assert.Equal(t, params.Username, user.Username)
		mockRepo.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mockRepo := mocks.NewMockUserRepository()
		svc := services.NewAuthService(mockRepo, orgID)

		params := validRegistration()

		mockRepo.On("GetByEmail", ctx, params.Email).
			Return(&domain.User{Email: params.Email}, nil)

		user, err := svc.Register(ctx, params, orgID)

		assert.Nil(t, user)
		assert.ErrorIs(t, err, apperrors.ErrUserExists)
		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("duplicate username", func(t *testing.T) {
		mockRepo := mocks.NewMockUserRepository()
		svc := services.NewAuthService(mockRepo, orgID)

		params := validRegistration()

		mockRepo.On("GetByEmail", ctx, params.Email).Return(nil, apperrors.ErrUserNotFound)
		mockRepo.On("GetByUsername", ctx, params.Username).
			Return(&domain.User{Username: params.Username}, nil)

		user, err := svc.Register(ctx, params, orgID)

		assert.Nil(t, user)
		assert.ErrorIs(t, err, apperrors.ErrUsernameTaken)
		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("weak password fails validation", func(t *testing.T) {
		mockRepo := mocks.NewMockUserRepository()
		svc := services.NewAuthService(mockRepo, orgID)

		params := validRegistration()
		params.Password = "short"

		user, err := svc.Register(ctx, params, orgID)

		assert.Nil(t, user)
		assert.Error(t, err)
		mockRepo.AssertNotCalled(t, "GetByEmail")
	})

	t.Run("falls back to default organization", func(t *testing.T) {
		mockRepo := mocks.NewMockUserRepository()
		svc := services.NewAuthService(mockRepo, orgID)

		params := validRegistration()

		mockRepo.On("GetByEmail", ctx, params.Email).Return(nil, apperrors.ErrUserNotFound)
		mockRepo.On("GetByUsername", ctx, params.Username).Return(nil, apperrors.ErrUserNotFound)
		mockRepo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.OrganizationID == orgID
		})).Return(&domain.User{OrganizationID: orgID}, nil)

		_, err := svc.Register(ctx, params, uuid.Nil)

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	password := "Str0ngPassword"
	hashed, err := domain.HashPassword(password)
	require.NoError(t, err)

	storedUser := &domain.User{
		ID:             uuid.New(),
		Email:          "jane@example.com",
		HashedPassword: hashed,
		IsActive:       true,
	}

	t.Run("success", func(t *testing.T) {
		mockRepo := mocks.NewMockUserRepository()
		svc := services.NewAuthService(mockRepo, orgID)

		mockRepo.On("GetByEmail", ctx, storedUser.Email).Return(storedUser, nil)

		user, err := svc.Login(ctx, storedUser.Email, password)

		require.NoError(t, err)
		assert.Equal(t, storedUser.ID, user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		mockRepo := mocks.NewMockUserRepository()
		svc := services.NewAuthService(mockRepo, orgID)

		mockRepo.On("GetByEmail", ctx, storedUser.Email).Return(storedUser, nil)

		user, err := svc.Login(ctx, storedUser.Email, "WrongPassw0rd")

		assert.Nil(t, user)
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("unknown email maps to invalid credentials", func(t *testing.T) {
		mockRepo := mocks.NewMockUserRepository()
		svc := services.NewAuthService(mockRepo, orgID)

		mockRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, apperrors.ErrUserNotFound)

		user, err := svc.Login(ctx, "nobody@example.com", password)

		assert.Nil(t, user)
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("empty email", func(t *testing.T) {
		mockRepo := mocks.NewMockUserRepository()
		svc := services.NewAuthService(mockRepo, orgID)

		user, err := svc.Login(ctx, "", password)

		assert.Nil(t, user)
		assert.ErrorIs(t, err, apperrors.ErrEmailRequired)
	})
}
