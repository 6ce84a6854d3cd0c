package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-backend/internal/core/domain"
	apperrors "github.com/taskhive/taskhive-backend/internal/core/errors"
	"github.com/taskhive/taskhive-backend/internal/core/ports"
)

// AuthService implements authentication business logic
type AuthService struct {
	userRepo     ports.UserRepository
	defaultOrgID uuid.UUID
}

var _ ports.AuthService = (*AuthService)(nil)

// NewAuthService creates a new authentication service
func NewAuthService(userRepo ports.UserRepository, defaultOrgID uuid.UUID) ports.AuthService {
	return &AuthService{
		userRepo:     userRepo,
		defaultOrgID: defaultOrgID,
	}
}

// Register creates a new user account with validated credentials
func (s *AuthService) Register(ctx context.Context, params domain.UserRegistrationParams, orgID uuid.UUID) (*domain.User, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// Check if the email or username is already claimed
	_, err := s.userRepo.GetByEmail(ctx, params.Email)
	if err == nil {
		return nil, apperrors.ErrUserExists
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err // An actual DB error occurred
	}

	_, err = s.userRepo.GetByUsername(ctx, params.Username)
	if err == nil {
		return nil, apperrors.ErrUsernameTaken
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}

	// Determine organization ID
	targetOrgID := orgID
	if targetOrgID == uuid.Nil {
		targetOrgID = s.defaultOrgID
	}

	// Create user with validated params
	user, err := domain.NewUser(params, targetOrgID)
	if err != nil {
		return nil, err
	}

	// Persist the user
	return s.userRepo.Create(ctx, user)
}

// Login authenticates a user with email and password
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	// Basic validation
	if email == "" {
		return nil, apperrors.ErrEmailRequired
	}
	if password == "" {
		return nil, apperrors.ErrPasswordRequired
	}

	// Find user by email
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			// Don't reveal whether email exists
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	// Verify password
	if !user.CheckPassword(password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return user, nil
}

// GetUser fetches a user by ID.
func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}
