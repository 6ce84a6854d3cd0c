package websocket

import (
	"log/slog"
	"time"

	"github.com/taskhive/taskhive-backend/internal/core/domain"
	"github.com/taskhive/taskhive-backend/internal/events"
)

// Dispatcher subscribes to the event bus and turns committed domain events
// into board frames for the owning project's room. It is the only bus
// consumer, so per-project frame order follows publish order.
type Dispatcher struct {
	hub    *Hub
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher emitting to the given hub.
func NewDispatcher(hub *Hub, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		hub:    hub,
		logger: logger.With("component", "broadcast_dispatcher"),
	}
}

// Attach subscribes the dispatcher to every broadcast event kind.
func (d *Dispatcher) Attach(bus *events.Bus) {
	kinds := []domain.EventKind{
		domain.EventTicketCreated,
		domain.EventTicketUpdated,
		domain.EventTicketsRearranged,
		domain.EventTicketDeleted,
		domain.EventFeatureCreated,
		domain.EventFeatureUpdated,
		domain.EventFeatureDeleted,
		domain.EventProjectUpdated,
		domain.EventProjectDeleted,
	}

	for _, kind := range kinds {
		bus.Subscribe(kind, d.handle)
	}
}

// handle shapes one event's payload and emits it to the project room.
// A malformed payload is a wiring bug: it is logged and dropped so the
// publishing request never observes a broadcast failure.
func (d *Dispatcher) handle(event domain.Event) {
	data, ok := d.shapePayload(event)
	if !ok {
		d.logger.Error("dropping event with unexpected payload",
			"event_kind", event.Kind,
			"project_id", event.ProjectID,
		)
		return
	}

	d.hub.EmitToProject(event.ProjectID, string(event.Kind), data)
}

// shapePayload maps a domain event to its wire form. Every frame carries
// the owning project, the acting user, and the commit timestamp alongside
// the affected record (full snapshot on create/update/rearrange, id only
// on delete).
func (d *Dispatcher) shapePayload(event domain.Event) (any, bool) {
	frame := func(actorField string, rest map[string]any) map[string]any {
		data := map[string]any{
			"projectId": event.ProjectID.String(),
			actorField:  event.ActorID.String(),
			"timestamp": event.OccurredAt.UTC().Format(time.RFC3339),
		}
		for k, v := range rest {
			data[k] = v
		}
		return data
	}

	switch event.Kind {
	case domain.EventTicketCreated:
		ticket, ok := event.Payload.(*domain.Ticket)
		if !ok {
			return nil, false
		}
		return frame("creatorId", map[string]any{
			"ticket": domain.NewTicketSnapshot(ticket),
		}), true

	case domain.EventTicketUpdated:
		ticket, ok := event.Payload.(*domain.Ticket)
		if !ok {
			return nil, false
		}
		return frame("updatedBy", map[string]any{
			"ticket": domain.NewTicketSnapshot(ticket),
		}), true

	case domain.EventTicketsRearranged:
		tickets, ok := event.Payload.([]*domain.Ticket)
		if !ok {
			return nil, false
		}
		return frame("movedBy", map[string]any{
			"tickets": domain.NewTicketSnapshots(tickets),
		}), true

	case domain.EventTicketDeleted:
		ticketID, ok := event.Payload.(int64)
		if !ok {
			return nil, false
		}
		return frame("deletedBy", map[string]any{
			"ticketId": ticketID,
		}), true

	case domain.EventFeatureCreated:
		feature, ok := event.Payload.(*domain.Feature)
		if !ok {
			return nil, false
		}
		return frame("creatorId", map[string]any{
			"feature": domain.NewFeatureSnapshot(feature),
		}), true

	case domain.EventFeatureUpdated:
		feature, ok := event.Payload.(*domain.Feature)
		if !ok {
			return nil, false
		}
		return frame("updatedBy", map[string]any{
			"feature": domain.NewFeatureSnapshot(feature),
		}), true

	case domain.EventFeatureDeleted:
		featureID, ok := event.Payload.(int64)
		if !ok {
			return nil, false
		}
		return frame("deletedBy", map[string]any{
			"featureId": featureID,
		}), true

	case domain.EventProjectUpdated:
		project, ok := event.Payload.(*domain.Project)
		if !ok {
			return nil, false
		}
		return frame("updatedBy", map[string]any{
			"project": domain.NewProjectSnapshot(project),
		}), true

	case domain.EventProjectDeleted:
		return frame("deletedBy", nil), true

	default:
		return nil, false
	}
}
