package domain

import (
	"time"
)

// Snapshots match the REST API response shapes so WebSocket consumers see
// the same field names as the HTTP endpoints.

// TicketSnapshot matches the API response shape for tickets.
type TicketSnapshot struct {
	ID                    int64   `json:"id"`
	Title                 string  `json:"title"`
	Description           string  `json:"description"`
	TicketType            string  `json:"ticketType"`
	TicketPriority        string  `json:"ticketPriority"`
	TicketStatus          string  `json:"ticketStatus"`
	Position              int32   `json:"position"`
	ProjectID             string  `json:"projectId"`
	FeatureID             *int64  `json:"featureId"`
	CreatorID             string  `json:"creatorId"`
	AssignedContributorID *string `json:"assignedContributorId"`
	DueAt                 *string `json:"dueAt"`
	VerifierID            *string `json:"verifierId"`
	VerifiedAt            *string `json:"verifiedAt"`
	CreatedAt             string  `json:"createdAt"`
	UpdatedAt             *string `json:"updatedAt"`
}

// FeatureSnapshot matches the API response shape for features.
type FeatureSnapshot struct {
	ID          int64   `json:"id"`
	ProjectID   string  `json:"projectId"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Position    int32   `json:"position"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   *string `json:"updatedAt"`
}

// ProjectSnapshot matches the API response shape for projects.
type ProjectSnapshot struct {
	ID             string  `json:"id"`
	OrganizationID string  `json:"organizationId"`
	Name           string  `json:"name"`
	Slug           string  `json:"slug"`
	Description    string  `json:"description"`
	OwnerID        string  `json:"ownerId"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      *string `json:"updatedAt"`
}

// NewTicketSnapshot builds a ticket snapshot from a domain ticket.
func NewTicketSnapshot(ticket *Ticket) TicketSnapshot {
	snapshot := TicketSnapshot{
		ID:             ticket.ID,
		Title:          ticket.Title,
		Description:    ticket.Description,
		TicketType:     string(ticket.TicketType),
		TicketPriority: string(ticket.TicketPriority),
		TicketStatus:   string(ticket.TicketStatus),
		Position:       ticket.Position,
		ProjectID:      ticket.ProjectID.String(),
		FeatureID:      ticket.FeatureID,
		CreatorID:      ticket.CreatorID.String(),
		CreatedAt:      formatTime(ticket.CreatedAt),
	}

	if ticket.AssignedContributorID != nil {
		value := ticket.AssignedContributorID.String()
		snapshot.AssignedContributorID = &value
	}
	if ticket.DueAt != nil {
		snapshot.DueAt = formatTimePtr(ticket.DueAt)
	}
	if ticket.VerifierID != nil {
		value := ticket.VerifierID.String()
		snapshot.VerifierID = &value
	}
	snapshot.VerifiedAt = formatTimePtr(ticket.VerifiedAt)
	snapshot.UpdatedAt = formatTimePtr(ticket.UpdatedAt)

	return snapshot
}

// NewTicketSnapshots maps a slice of tickets to snapshots.
func NewTicketSnapshots(tickets []*Ticket) []TicketSnapshot {
	snapshots := make([]TicketSnapshot, 0, len(tickets))
	for _, ticket := range tickets {
		snapshots = append(snapshots, NewTicketSnapshot(ticket))
	}
	return snapshots
}

// NewFeatureSnapshot builds a feature snapshot from a domain feature.
func NewFeatureSnapshot(feature *Feature) FeatureSnapshot {
	return FeatureSnapshot{
		ID:          feature.ID,
		ProjectID:   feature.ProjectID.String(),
		Title:       feature.Title,
		Description: feature.Description,
		Position:    feature.Position,
		CreatedAt:   formatTime(feature.CreatedAt),
		UpdatedAt:   formatTimePtr(feature.UpdatedAt),
	}
}

// NewProjectSnapshot builds a project snapshot from a domain project.
func NewProjectSnapshot(project *Project) ProjectSnapshot {
	return ProjectSnapshot{
		ID:             project.ID.String(),
		OrganizationID: project.OrganizationID.String(),
		Name:           project.Name,
		Slug:           project.Slug,
		Description:    project.Description,
		OwnerID:        project.OwnerID.String(),
		CreatedAt:      formatTime(project.CreatedAt),
		UpdatedAt:      formatTimePtr(project.UpdatedAt),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	value := formatTime(*t)
	return &value
}
