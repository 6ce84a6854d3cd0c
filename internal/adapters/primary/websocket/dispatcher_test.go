package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive-backend/internal/core/domain"
	"github.com/taskhive/taskhive-backend/internal/events"
)

func newDispatcherFixture(t *testing.T, projectID uuid.UUID) (*events.Bus, *Client) {
	t.Helper()

	hub := NewHub(discardLogger())
	go hub.Run()

	bus := events.NewBus(discardLogger())
	NewDispatcher(hub, discardLogger()).Attach(bus)

	client := newTestClient(hub, projectID, "viewer")
	register(t, hub, client)

	return bus, client
}

// frameData unwraps a frame's data object and checks the envelope fields
// every broadcast carries: the owning project, the actor under the given
// field name, and a parseable timestamp.
func frameData(t *testing.T, msg Message, projectID, actorID uuid.UUID, actorField string) map[string]any {
	t.Helper()

	data, ok := msg.Data.(map[string]any)
	require.True(t, ok, "frame data is not an object: %T", msg.Data)

	assert.Equal(t, projectID.String(), data["projectId"])
	assert.Equal(t, actorID.String(), data[actorField])

	ts, ok := data["timestamp"].(string)
	require.True(t, ok, "frame has no timestamp")
	_, err := time.Parse(time.RFC3339, ts)
	require.NoError(t, err)

	return data
}

func TestDispatcher_TicketCreatedFrame(t *testing.T) {
	projectID := uuid.New()
	bus, client := newDispatcherFixture(t, projectID)

	creatorID := uuid.New()
	ticket := &domain.Ticket{
		ID:             42,
		Title:          "Wire up login",
		TicketType:     domain.TypeTask,
		TicketPriority: domain.PriorityHigh,
		TicketStatus:   domain.StatusBacklog,
		ProjectID:      projectID,
		CreatorID:      creatorID,
		CreatedAt:      time.Now().UTC(),
	}

	bus.Publish(domain.NewEvent(domain.EventTicketCreated, projectID, creatorID, ticket))

	msg := receive(t, client)
	assert.Equal(t, "ticket.created", msg.Event)

	data := frameData(t, msg, projectID, creatorID, "creatorId")

	snapshot, ok := data["ticket"].(domain.TicketSnapshot)
	require.True(t, ok)
	assert.Equal(t, int64(42), snapshot.ID)
	assert.Equal(t, "Wire up login", snapshot.Title)
	assert.Equal(t, projectID.String(), snapshot.ProjectID)
}

func TestDispatcher_TicketUpdatedFrame(t *testing.T) {
	projectID := uuid.New()
	bus, client := newDispatcherFixture(t, projectID)

	editorID := uuid.New()
	ticket := &domain.Ticket{
		ID:           42,
		Title:        "Wire up login",
		TicketStatus: domain.StatusInProgress,
		ProjectID:    projectID,
		CreatorID:    uuid.New(),
	}

	bus.Publish(domain.NewEvent(domain.EventTicketUpdated, projectID, editorID, ticket))

	msg := receive(t, client)
	assert.Equal(t, "ticket.updated", msg.Event)

	data := frameData(t, msg, projectID, editorID, "updatedBy")

	snapshot, ok := data["ticket"].(domain.TicketSnapshot)
	require.True(t, ok)
	assert.Equal(t, int64(42), snapshot.ID)
}

func TestDispatcher_RearrangedCarriesWholeBatch(t *testing.T) {
	projectID := uuid.New()
	bus, client := newDispatcherFixture(t, projectID)

	moverID := uuid.New()
	tickets := []*domain.Ticket{
		{ID: 1, ProjectID: projectID, TicketStatus: domain.StatusTodo, Position: 0},
		{ID: 2, ProjectID: projectID, TicketStatus: domain.StatusTodo, Position: 1},
	}

	bus.Publish(domain.NewEvent(domain.EventTicketsRearranged, projectID, moverID, tickets))

	msg := receive(t, client)
	assert.Equal(t, "ticket.rearranged", msg.Event)

	data := frameData(t, msg, projectID, moverID, "movedBy")

	snapshots, ok := data["tickets"].([]domain.TicketSnapshot)
	require.True(t, ok)
	require.Len(t, snapshots, 2)
	assert.Equal(t, int64(1), snapshots[0].ID)
	assert.Equal(t, int64(2), snapshots[1].ID)
}

func TestDispatcher_DeletedFrameNamesActorAndTicket(t *testing.T) {
	projectID := uuid.New()
	bus, client := newDispatcherFixture(t, projectID)

	deleterID := uuid.New()
	bus.Publish(domain.NewEvent(domain.EventTicketDeleted, projectID, deleterID, int64(7)))

	msg := receive(t, client)
	assert.Equal(t, "ticket.deleted", msg.Event)

	// The row is gone, so the frame carries only the id plus the envelope:
	// who deleted it and when.
	data := frameData(t, msg, projectID, deleterID, "deletedBy")
	assert.Equal(t, int64(7), data["ticketId"])
	assert.NotContains(t, data, "ticket")
}

func TestDispatcher_MalformedPayloadIsDropped(t *testing.T) {
	projectID := uuid.New()
	bus, client := newDispatcherFixture(t, projectID)

	// A ticket.created event must carry *domain.Ticket.
	bus.Publish(domain.NewEvent(domain.EventTicketCreated, projectID, uuid.New(), "not a ticket"))

	select {
	case msg := <-client.Send:
		t.Fatalf("malformed event was broadcast: %v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDispatcher_FeatureDeletedFrame(t *testing.T) {
	projectID := uuid.New()
	bus, client := newDispatcherFixture(t, projectID)

	deleterID := uuid.New()
	bus.Publish(domain.NewEvent(domain.EventFeatureDeleted, projectID, deleterID, int64(3)))

	msg := receive(t, client)
	assert.Equal(t, "feature.deleted", msg.Event)

	data := frameData(t, msg, projectID, deleterID, "deletedBy")
	assert.Equal(t, int64(3), data["featureId"])
}

func TestDispatcher_ProjectDeletedFrame(t *testing.T) {
	projectID := uuid.New()
	bus, client := newDispatcherFixture(t, projectID)

	deleterID := uuid.New()
	bus.Publish(domain.NewEvent(domain.EventProjectDeleted, projectID, deleterID, nil))

	msg := receive(t, client)
	assert.Equal(t, "project.deleted", msg.Event)

	frameData(t, msg, projectID, deleterID, "deletedBy")
}
