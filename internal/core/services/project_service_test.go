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
	"github.com/taskhive/taskhive-backend/internal/core/ports"
	"github.com/taskhive/taskhive-backend/internal/core/services"
)

func TestProjectService_CreateProject(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	ownerID := uuid.New()

	t.Run("success without broadcast", func(t *testing.T) {
		mockRepo := mocks.NewMockProjectRepository()
		mockPublisher := mocks.NewMockEventPublisher()
		svc := services.NewProjectService(mockRepo, mockPublisher, orgID)

		mockRepo.On("Create", ctx, mock.MatchedBy(func(p *domain.Project) bool {
			return p.Name == "Website Redesign" && p.Slug == "website-redesign" && p.OwnerID == ownerID
		})).Return(&domain.Project{
			ID:      uuid.New(),
			Name:    "Website Redesign",
			Slug:    "website-redesign",
			OwnerID: ownerID,
		}, nil)

		project, err := svc.CreateProject(ctx, ports.CreateProjectParams{
			Name:    "Website Redesign",
			OwnerID: ownerID,
			OrgID:   orgID,
		})

		require.NoError(t, err)
		assert.Equal(t, "website-redesign", project.Slug)
		mockPublisher.AssertNotCalled(t, "Publish")
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		mockRepo := mocks.NewMockProjectRepository()
		mockPublisher := mocks.NewMockEventPublisher()
		svc := services.NewProjectService(mockRepo, mockPublisher, orgID)

		project, err := svc.CreateProject(ctx, ports.CreateProjectParams{
			Name:    "",
			OwnerID: ownerID,
		})

		assert.Nil(t, project)
		assert.ErrorIs(t, err, apperrors.ErrNameRequired)
		mockRepo.AssertNotCalled(t, "Create")
	})
}

func TestProjectService_RequireMember(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	projectID := uuid.New()
	userID := uuid.New()

	t.Run("member passes", func(t *testing.T) {
		mockRepo := mocks.NewMockProjectRepository()
		mockPublisher := mocks.NewMockEventPublisher()
		svc := services.NewProjectService(mockRepo, mockPublisher, orgID)

		mockRepo.On("GetByID", ctx, projectID).Return(&domain.Project{ID: projectID}, nil)
		mockRepo.On("IsMember", ctx, projectID, userID).Return(true, nil)

		assert.NoError(t, svc.RequireMember(ctx, projectID, userID))
	})

	t.Run("non-member is rejected", func(t *testing.T) {
		mockRepo := mocks.NewMockProjectRepository()
		mockPublisher := mocks.NewMockEventPublisher()
		svc := services.NewProjectService(mockRepo, mockPublisher, orgID)

		mockRepo.On("GetByID", ctx, projectID).Return(&domain.Project{ID: projectID}, nil)
		mockRepo.On("IsMember", ctx, projectID, userID).Return(false, nil)

		assert.ErrorIs(t, svc.RequireMember(ctx, projectID, userID), apperrors.ErrNotProjectMember)
	})

	t.Run("missing project reads as not found, not forbidden", func(t *testing.T) {
		mockRepo := mocks.NewMockProjectRepository()
		mockPublisher := mocks.NewMockEventPublisher()
		svc := services.NewProjectService(mockRepo, mockPublisher, orgID)

		mockRepo.On("GetByID", ctx, projectID).Return(nil, apperrors.ErrProjectNotFound)

		assert.ErrorIs(t, svc.RequireMember(ctx, projectID, userID), apperrors.ErrProjectNotFound)
		mockRepo.AssertNotCalled(t, "IsMember")
	})
}

func TestProjectService_UpdateProject(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	projectID := uuid.New()
	actorID := uuid.New()

	t.Run("rename keeps the slug and publishes project.updated", func(t *testing.T) {
		mockRepo := mocks.NewMockProjectRepository()
		mockPublisher := mocks.NewMockEventPublisher()
		svc := services.NewProjectService(mockRepo, mockPublisher, orgID)

		existing := &domain.Project{
			ID:      projectID,
			Name:    "Old Name",
			Slug:    "old-name",
			OwnerID: actorID,
		}

		mockRepo.On("GetByID", ctx, projectID).Return(existing, nil)
		mockRepo.On("IsMember", ctx, projectID, actorID).Return(true, nil)
		mockRepo.On("Update", ctx, mock.MatchedBy(func(p *domain.Project) bool {
			return p.Name == "New Name" && p.Slug == "old-name"
		})).Return(&domain.Project{
			ID:   projectID,
			Name: "New Name",
			Slug: "old-name",
		}, nil)
		mockPublisher.On("Publish", mock.MatchedBy(func(e domain.Event) bool {
			return e.Kind == domain.EventProjectUpdated && e.ProjectID == projectID
		})).Return()

		newName := "New Name"
		updated, err := svc.UpdateProject(ctx, ports.UpdateProjectParams{
			ProjectID: projectID,
			ActorID:   actorID,
			Update:    domain.ProjectUpdate{Name: &newName},
		})

		require.NoError(t, err)
		assert.Equal(t, "old-name", updated.Slug)
		mockPublisher.AssertExpectations(t)
	})
}

func TestProjectService_DeleteProject(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	projectID := uuid.New()
	ownerID := uuid.New()

	t.Run("owner deletes and project.deleted is published", func(t *testing.T) {
		mockRepo := mocks.NewMockProjectRepository()
		mockPublisher := mocks.NewMockEventPublisher()
		svc := services.NewProjectService(mockRepo, mockPublisher, orgID)

		mockRepo.On("GetByID", ctx, projectID).
			Return(&domain.Project{ID: projectID, OwnerID: ownerID}, nil)
		mockRepo.On("Delete", ctx, projectID).Return(nil)
		mockPublisher.On("Publish", mock.MatchedBy(func(e domain.Event) bool {
			return e.Kind == domain.EventProjectDeleted && e.ProjectID == projectID
		})).Return()

		require.NoError(t, svc.DeleteProject(ctx, projectID, ownerID))
		mockPublisher.AssertExpectations(t)
	})

	t.Run("non-owner member is forbidden", func(t *testing.T) {
		mockRepo := mocks.NewMockProjectRepository()
		mockPublisher := mocks.NewMockEventPublisher()
		svc := services.NewProjectService(mockRepo, mockPublisher, orgID)

		mockRepo.On("GetByID", ctx, projectID).
			Return(&domain.Project{ID: projectID, OwnerID: ownerID}, nil)

		err := svc.DeleteProject(ctx, projectID, uuid.New())

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		mockRepo.AssertNotCalled(t, "Delete")
		mockPublisher.AssertNotCalled(t, "Publish")
	})
}
