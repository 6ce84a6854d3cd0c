package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-backend/internal/core/domain"
	apperrors "github.com/taskhive/taskhive-backend/internal/core/errors"
	"github.com/taskhive/taskhive-backend/internal/core/ports"
)

// ProjectService implements business logic for project management. Events
// are published only after the repository confirms the mutation, so the
// board never sees a change that did not commit.
type ProjectService struct {
	projectRepo  ports.ProjectRepository
	publisher    ports.EventPublisher
	defaultOrgID uuid.UUID
}

var _ ports.ProjectService = (*ProjectService)(nil)

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo ports.ProjectRepository,
	publisher ports.EventPublisher,
	defaultOrgID uuid.UUID,
) ports.ProjectService {
	return &ProjectService{
		projectRepo:  projectRepo,
		publisher:    publisher,
		defaultOrgID: defaultOrgID,
	}
}

// CreateProject creates a project with the actor as owner.
func (s *ProjectService) CreateProject(ctx context.Context, params ports.CreateProjectParams) (*domain.Project, error) {
	orgID := params.OrgID
	if orgID == uuid.Nil {
		orgID = s.defaultOrgID
	}

	project, err := domain.NewProject(domain.ProjectParams{
		OrganizationID: orgID,
		Name:           params.Name,
		Description:    params.Description,
		OwnerID:        params.OwnerID,
	})
	if err != nil {
		return nil, err
	}

	// The repository inserts the owner membership in the same transaction.
	created, err := s.projectRepo.Create(ctx, project)
	if err != nil {
		return nil, err
	}

	// No project.created broadcast: nobody can be in the room before the
	// project exists.
	return created, nil
}

// GetProject fetches a project, requiring membership.
func (s *ProjectService) GetProject(ctx context.Context, projectID, viewerID uuid.UUID) (*domain.Project, error) {
	if err := s.RequireMember(ctx, projectID, viewerID); err != nil {
		return nil, err
	}
	return s.projectRepo.GetByID(ctx, projectID)
}

// UpdateProject patches a project and announces the change to its room.
func (s *ProjectService) UpdateProject(ctx context.Context, params ports.UpdateProjectParams) (*domain.Project, error) {
	if err := s.RequireMember(ctx, params.ProjectID, params.ActorID); err != nil {
		return nil, err
	}

	project, err := s.projectRepo.GetByID(ctx, params.ProjectID)
	if err != nil {
		return nil, err
	}

	if err := project.Apply(params.Update); err != nil {
		return nil, err
	}

	updated, err := s.projectRepo.Update(ctx, project)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(domain.NewEvent(domain.EventProjectUpdated, updated.ID, params.ActorID, updated))

	return updated, nil
}

// DeleteProject removes a project. Only the owner may delete.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID, actorID uuid.UUID) error {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return err
	}

	if project.OwnerID != actorID {
		return apperrors.ErrForbidden
	}

	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		return err
	}

	s.publisher.Publish(domain.NewEvent(domain.EventProjectDeleted, projectID, actorID, nil))

	return nil
}

// ListProjects returns every project the viewer is a member of.
func (s *ProjectService) ListProjects(ctx context.Context, viewerID uuid.UUID) ([]*domain.Project, error) {
	return s.projectRepo.ListByMember(ctx, viewerID)
}

// RequireMember returns ErrNotProjectMember unless the user belongs to the
// project. ErrProjectNotFound passes through so callers can distinguish a
// missing project from a membership failure.
func (s *ProjectService) RequireMember(ctx context.Context, projectID, userID uuid.UUID) error {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		return err
	}

	isMember, err := s.projectRepo.IsMember(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return apperrors.ErrNotProjectMember
	}
	return nil
}
