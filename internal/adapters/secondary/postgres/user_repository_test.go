package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive-backend/internal/core/domain"
	apperrors "github.com/taskhive/taskhive-backend/internal/core/errors"
)

// defaultOrgID matches the organization seeded by the migrations.
var defaultOrgID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// seedUser inserts a user with generated credentials and returns it.
func seedUser(t *testing.T, username string) *domain.User {
	t.Helper()

	repo := NewUserRepository(testPool)
	user, err := repo.Create(context.Background(), &domain.User{
		ID:             uuid.New(),
		OrganizationID: defaultOrgID,
		Username:       username,
		FullName:       "Test User",
		Email:          fmt.Sprintf("%s-%s@example.com", username, uuid.NewString()[:8]),
		HashedPassword: "$2a$10$fakehashfortestingonly....................",
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	})
	require.NoError(t, err)
	return user
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testPool)

	created := seedUser(t, "jdoe-"+uuid.NewString()[:8])

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, byID.Email)
	assert.Equal(t, defaultOrgID, byID.OrganizationID)

	byEmail, err := repo.GetByEmail(ctx, created.Email)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byUsername, err := repo.GetByUsername(ctx, created.Username)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byUsername.ID)
}

func TestUserRepository_GetMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testPool)

	_, err := repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testPool)

	existing := seedUser(t, "original-"+uuid.NewString()[:8])

	_, err := repo.Create(ctx, &domain.User{
		ID:             uuid.New(),
		OrganizationID: defaultOrgID,
		Username:       "different-" + uuid.NewString()[:8],
		FullName:       "Copy Cat",
		Email:          existing.Email,
		HashedPassword: "$2a$10$fakehashfortestingonly....................",
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	})
	assert.ErrorIs(t, err, apperrors.ErrUserExists)
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testPool)

	existing := seedUser(t, "taken-"+uuid.NewString()[:8])

	_, err := repo.Create(ctx, &domain.User{
		ID:             uuid.New(),
		OrganizationID: defaultOrgID,
		Username:       existing.Username,
		FullName:       "Copy Cat",
		Email:          fmt.Sprintf("other-%s@example.com", uuid.NewString()[:8]),
		HashedPassword: "$2a$10$fakehashfortestingonly....................",
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	})
	assert.ErrorIs(t, err, apperrors.ErrUsernameTaken)
}
