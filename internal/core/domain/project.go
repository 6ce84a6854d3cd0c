package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/taskhive/taskhive-backend/internal/core/errors"
)

// MaxProjectNameLength bounds project and organization names.
const MaxProjectNameLength = 255

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// Organization is the tenant boundary. Users and projects belong to exactly
// one organization.
type Organization struct {
	ID        uuid.UUID
	Name      string
	Slug      string
	CreatedAt time.Time
}

// ProjectRole is a member's role within a project.
type ProjectRole string

const (
	RoleOwner       ProjectRole = "OWNER"
	RoleContributor ProjectRole = "CONTRIBUTOR"
)

// Project groups features and tickets. Its ID keys the WebSocket room for
// live board updates.
type Project struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	Slug           string
	Description    string
	OwnerID        uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// ProjectParams holds the caller-supplied fields for creating a project.
type ProjectParams struct {
	OrganizationID uuid.UUID
	Name           string
	Description    string
	OwnerID        uuid.UUID
}

// NewProject creates a valid project with a slug derived from the name.
func NewProject(params ProjectParams) (*Project, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, apperrors.ErrNameRequired
	}
	if len(params.Name) > MaxProjectNameLength {
		return nil, apperrors.ErrTitleTooLong
	}

	return &Project{
		ID:             uuid.New(),
		OrganizationID: params.OrganizationID,
		Name:           params.Name,
		Slug:           Slugify(params.Name),
		Description:    params.Description,
		OwnerID:        params.OwnerID,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// ProjectUpdate holds optional fields for patching a project.
type ProjectUpdate struct {
	Name        *string
	Description *string
}

// Apply mutates the project with the given update.
func (p *Project) Apply(update ProjectUpdate) error {
	if update.Name != nil {
		if strings.TrimSpace(*update.Name) == "" {
			return apperrors.ErrNameRequired
		}
		if len(*update.Name) > MaxProjectNameLength {
			return apperrors.ErrTitleTooLong
		}
		p.Name = *update.Name
	}
	if update.Description != nil {
		p.Description = *update.Description
	}

	now := time.Now().UTC()
	p.UpdatedAt = &now
	return nil
}

// Slugify lowercases a name and collapses runs of non-alphanumerics to
// single hyphens.
func Slugify(name string) string {
	slug := slugCleaner.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}
