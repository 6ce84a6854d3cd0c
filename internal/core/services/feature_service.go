package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-backend/internal/core/domain"
	apperrors "github.com/taskhive/taskhive-backend/internal/core/errors"
	"github.com/taskhive/taskhive-backend/internal/core/ports"
)

// FeatureService implements business logic for feature management
type FeatureService struct {
	featureRepo ports.FeatureRepository
	projectSvc  ports.ProjectService
	publisher   ports.EventPublisher
}

var _ ports.FeatureService = (*FeatureService)(nil)

// NewFeatureService creates a new feature service
func NewFeatureService(
	featureRepo ports.FeatureRepository,
	projectSvc ports.ProjectService,
	publisher ports.EventPublisher,
) ports.FeatureService {
	return &FeatureService{
		featureRepo: featureRepo,
		projectSvc:  projectSvc,
		publisher:   publisher,
	}
}

// CreateFeature creates a feature in the project and announces it.
func (s *FeatureService) CreateFeature(ctx context.Context, params ports.CreateFeatureParams) (*domain.Feature, error) {
	if err := s.projectSvc.RequireMember(ctx, params.ProjectID, params.ActorID); err != nil {
		return nil, err
	}

	feature, err := domain.NewFeature(domain.FeatureParams{
		ProjectID:   params.ProjectID,
		Title:       params.Title,
		Description: params.Description,
	})
	if err != nil {
		return nil, err
	}

	created, err := s.featureRepo.Create(ctx, feature)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(domain.NewEvent(domain.EventFeatureCreated, created.ProjectID, params.ActorID, created))

	return created, nil
}

// UpdateFeature patches a feature and announces the change.
func (s *FeatureService) UpdateFeature(ctx context.Context, params ports.UpdateFeatureParams) (*domain.Feature, error) {
	if err := s.projectSvc.RequireMember(ctx, params.ProjectID, params.ActorID); err != nil {
		return nil, err
	}

	feature, err := s.getProjectFeature(ctx, params.ProjectID, params.FeatureID)
	if err != nil {
		return nil, err
	}

	if err := feature.Apply(params.Update); err != nil {
		return nil, err
	}

	updated, err := s.featureRepo.Update(ctx, feature)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(domain.NewEvent(domain.EventFeatureUpdated, updated.ProjectID, params.ActorID, updated))

	return updated, nil
}

// DeleteFeature removes a feature. Tickets keep existing; the repository
// nulls their feature reference.
func (s *FeatureService) DeleteFeature(ctx context.Context, projectID uuid.UUID, featureID int64, actorID uuid.UUID) error {
	if err := s.projectSvc.RequireMember(ctx, projectID, actorID); err != nil {
		return err
	}

	if _, err := s.getProjectFeature(ctx, projectID, featureID); err != nil {
		return err
	}

	if err := s.featureRepo.Delete(ctx, featureID); err != nil {
		return err
	}

	s.publisher.Publish(domain.NewEvent(domain.EventFeatureDeleted, projectID, actorID, featureID))

	return nil
}

// ListFeatures returns the project's features ordered by position.
func (s *FeatureService) ListFeatures(ctx context.Context, projectID, viewerID uuid.UUID) ([]*domain.Feature, error) {
	if err := s.projectSvc.RequireMember(ctx, projectID, viewerID); err != nil {
		return nil, err
	}
	return s.featureRepo.ListByProject(ctx, projectID)
}

// getProjectFeature fetches a feature and confirms it belongs to the
// project named in the URL.
func (s *FeatureService) getProjectFeature(ctx context.Context, projectID uuid.UUID, featureID int64) (*domain.Feature, error) {
	feature, err := s.featureRepo.GetByID(ctx, featureID)
	if err != nil {
		return nil, err
	}
	if feature.ProjectID != projectID {
		return nil, apperrors.ErrFeatureNotFound
	}
	return feature, nil
}
