package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/taskhive/taskhive-backend/internal/core/errors"
)

// Field length limits shared by domain validation and request DTOs.
const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 10000
)

// TicketStatus represents the board column a ticket lives in.
type TicketStatus string

const (
	StatusBacklog    TicketStatus = "BACKLOG"
	StatusTodo       TicketStatus = "TODO"
	StatusInProgress TicketStatus = "IN_PROGRESS"
	StatusInReview   TicketStatus = "IN_REVIEW"
	StatusDone       TicketStatus = "DONE"
)

// ValidTicketStatuses lists every accepted status value.
var ValidTicketStatuses = []TicketStatus{
	StatusBacklog, StatusTodo, StatusInProgress, StatusInReview, StatusDone,
}

// TicketType classifies the kind of work a ticket tracks.
type TicketType string

const (
	TypeTask  TicketType = "TASK"
	TypeBug   TicketType = "BUG"
	TypeStory TicketType = "STORY"
)

// TicketPriority represents the urgency of a ticket.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "LOW"
	PriorityMedium TicketPriority = "MEDIUM"
	PriorityHigh   TicketPriority = "HIGH"
	PriorityUrgent TicketPriority = "URGENT"
)

// Ticket is the core board entity. Position is a dense ordering key within
// the ticket's project/status column; rearranging the board rewrites many
// positions in one batch.
type Ticket struct {
	ID                    int64
	Title                 string
	Description           string
	TicketType            TicketType
	TicketPriority        TicketPriority
	TicketStatus          TicketStatus
	Position              int32
	ProjectID             uuid.UUID
	FeatureID             *int64
	CreatorID             uuid.UUID
	AssignedContributorID *uuid.UUID
	DueAt                 *time.Time
	VerifierID            *uuid.UUID
	VerifiedAt            *time.Time
	CreatedAt             time.Time
	UpdatedAt             *time.Time
}

// TicketParams holds the caller-supplied fields for creating a ticket.
type TicketParams struct {
	Title          string
	Description    string
	TicketType     TicketType
	TicketPriority TicketPriority
	ProjectID      uuid.UUID
	FeatureID      *int64
	CreatorID      uuid.UUID
	DueAt          *time.Time
}

// NewTicket is a factory function to create a valid new ticket. New tickets
// always start in the backlog; position is assigned by the repository on
// insert.
func NewTicket(params TicketParams) (*Ticket, error) {
	if params.Title == "" {
		return nil, apperrors.ErrTitleRequired
	}
	if len(params.Title) > MaxTitleLength {
		return nil, apperrors.ErrTitleTooLong
	}
	if len(params.Description) > MaxDescriptionLength {
		return nil, apperrors.ErrDescriptionTooLong
	}
	if !isValidTicketType(params.TicketType) {
		return nil, apperrors.ErrInvalidTicketType
	}
	if !isValidPriority(params.TicketPriority) {
		return nil, apperrors.ErrInvalidPriority
	}
	if params.ProjectID == uuid.Nil {
		return nil, apperrors.ErrProjectIDRequired
	}

	return &Ticket{
		Title:          params.Title,
		Description:    params.Description,
		TicketType:     params.TicketType,
		TicketPriority: params.TicketPriority,
		TicketStatus:   StatusBacklog,
		ProjectID:      params.ProjectID,
		FeatureID:      params.FeatureID,
		CreatorID:      params.CreatorID,
		DueAt:          params.DueAt,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// TicketUpdate holds optional fields for patching a ticket. Nil fields are
// left untouched; Clear* flags null the corresponding column.
type TicketUpdate struct {
	Title                 *string
	Description           *string
	TicketType            *TicketType
	TicketPriority        *TicketPriority
	TicketStatus          *TicketStatus
	FeatureID             *int64
	ClearFeature          bool
	AssignedContributorID *uuid.UUID
	ClearAssignee         bool
	DueAt                 *time.Time
	ClearDueAt            bool
}

// Apply mutates the ticket with the given update, enforcing field rules.
func (t *Ticket) Apply(update TicketUpdate) error {
	if update.Title != nil {
		if *update.Title == "" {
			return apperrors.ErrTitleRequired
		}
		if len(*update.Title) > MaxTitleLength {
			return apperrors.ErrTitleTooLong
		}
		t.Title = *update.Title
	}
	if update.Description != nil {
		if len(*update.Description) > MaxDescriptionLength {
			return apperrors.ErrDescriptionTooLong
		}
		t.Description = *update.Description
	}
	if update.TicketType != nil {
		if !isValidTicketType(*update.TicketType) {
			return apperrors.ErrInvalidTicketType
		}
		t.TicketType = *update.TicketType
	}
	if update.TicketPriority != nil {
		if !isValidPriority(*update.TicketPriority) {
			return apperrors.ErrInvalidPriority
		}
		t.TicketPriority = *update.TicketPriority
	}
	if update.TicketStatus != nil {
		if !IsValidStatus(*update.TicketStatus) {
			return apperrors.ErrInvalidStatus
		}
		t.TicketStatus = *update.TicketStatus
	}
	if update.ClearFeature {
		t.FeatureID = nil
	} else if update.FeatureID != nil {
		t.FeatureID = update.FeatureID
	}
	if update.ClearAssignee {
		t.AssignedContributorID = nil
	} else if update.AssignedContributorID != nil {
		t.AssignedContributorID = update.AssignedContributorID
	}
	if update.ClearDueAt {
		t.DueAt = nil
	} else if update.DueAt != nil {
		t.DueAt = update.DueAt
	}

	now := time.Now().UTC()
	t.UpdatedAt = &now
	return nil
}

// Verify records that the given user verified the ticket's completion.
// Only tickets that reached the done column can be verified.
func (t *Ticket) Verify(verifierID uuid.UUID) error {
	if t.TicketStatus != StatusDone {
		return apperrors.ErrTicketNotDone
	}
	now := time.Now().UTC()
	t.VerifierID = &verifierID
	t.VerifiedAt = &now
	t.UpdatedAt = &now
	return nil
}

// IsCreatedBy reports whether the given user created the ticket.
func (t *Ticket) IsCreatedBy(userID uuid.UUID) bool {
	return t.CreatorID == userID
}

// IsAssignedTo reports whether the ticket is assigned to the given user.
func (t *Ticket) IsAssignedTo(userID uuid.UUID) bool {
	return t.AssignedContributorID != nil && *t.AssignedContributorID == userID
}

// IsValidStatus reports whether the given status is an accepted value.
func IsValidStatus(status TicketStatus) bool {
	for _, s := range ValidTicketStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func isValidTicketType(tt TicketType) bool {
	switch tt {
	case TypeTask, TypeBug, TypeStory:
		return true
	}
	return false
}

func isValidPriority(p TicketPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
