package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventKind identifies a domain event. The constant values double as the
// outbound WebSocket event names.
type EventKind string

const (
	EventTicketCreated     EventKind = "ticket.created"
	EventTicketUpdated     EventKind = "ticket.updated"
	EventTicketsRearranged EventKind = "ticket.rearranged"
	EventTicketDeleted     EventKind = "ticket.deleted"
	EventFeatureCreated    EventKind = "feature.created"
	EventFeatureUpdated    EventKind = "feature.updated"
	EventFeatureDeleted    EventKind = "feature.deleted"
	EventProjectUpdated    EventKind = "project.updated"
	EventProjectDeleted    EventKind = "project.deleted"

	// EventUserDisconnected is emitted by the room manager itself, not the
	// REST layer, when a member's socket closes.
	EventUserDisconnected EventKind = "user.disconnected"
)

// Event is an immutable notification that a persisted mutation committed.
// It is published by the service layer and consumed exactly once, in
// publish order, by the broadcast dispatcher within the same process.
type Event struct {
	Kind       EventKind
	ProjectID  uuid.UUID
	ActorID    uuid.UUID
	OccurredAt time.Time
	Payload    any
}

// NewEvent stamps a domain event with the current time.
func NewEvent(kind EventKind, projectID, actorID uuid.UUID, payload any) Event {
	return Event{
		Kind:       kind,
		ProjectID:  projectID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}
