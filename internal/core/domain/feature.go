package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/taskhive/taskhive-backend/internal/core/errors"
)

// Feature is a grouping of tickets within a project (an epic, roughly).
type Feature struct {
	ID          int64
	ProjectID   uuid.UUID
	Title       string
	Description string
	Position    int32
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// FeatureParams holds the caller-supplied fields for creating a feature.
type FeatureParams struct {
	ProjectID   uuid.UUID
	Title       string
	Description string
}

// NewFeature creates a valid feature. Position is assigned by the
// repository on insert.
func NewFeature(params FeatureParams) (*Feature, error) {
	if params.Title == "" {
		return nil, apperrors.ErrTitleRequired
	}
	if len(params.Title) > MaxTitleLength {
		return nil, apperrors.ErrTitleTooLong
	}
	if params.ProjectID == uuid.Nil {
		return nil, apperrors.ErrProjectIDRequired
	}

	return &Feature{
		ProjectID:   params.ProjectID,
		Title:       params.Title,
		Description: params.Description,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// FeatureUpdate holds optional fields for patching a feature.
type FeatureUpdate struct {
	Title       *string
	Description *string
	Position    *int32
}

// Apply mutates the feature with the given update.
func (f *Feature) Apply(update FeatureUpdate) error {
	if update.Title != nil {
		if *update.Title == "" {
			return apperrors.ErrTitleRequired
		}
		if len(*update.Title) > MaxTitleLength {
			return apperrors.ErrTitleTooLong
		}
		f.Title = *update.Title
	}
	if update.Description != nil {
		f.Description = *update.Description
	}
	if update.Position != nil {
		f.Position = *update.Position
	}

	now := time.Now().UTC()
	f.UpdatedAt = &now
	return nil
}
