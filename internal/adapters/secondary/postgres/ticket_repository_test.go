package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive-backend/internal/core/domain"
	apperrors "github.com/taskhive/taskhive-backend/internal/core/errors"
	"github.com/taskhive/taskhive-backend/internal/core/ports"
)

// seedTicket creates a ticket in the given project's status column.
func seedTicket(t *testing.T, project *domain.Project, creator *domain.User, title string, status domain.TicketStatus) *domain.Ticket {
	t.Helper()

	repo := NewTicketRepository(testPool)
	ticket, err := repo.Create(context.Background(), &domain.Ticket{
		Title:          title,
		TicketType:     domain.TypeTask,
		TicketPriority: domain.PriorityMedium,
		TicketStatus:   status,
		ProjectID:      project.ID,
		CreatorID:      creator.ID,
		CreatedAt:      time.Now().UTC(),
	})
	require.NoError(t, err)
	return ticket
}

func TestTicketRepository_CreateAssignsPositionPerColumn(t *testing.T) {
	project, owner := seedProject(t, "Positioning Board")

	first := seedTicket(t, project, owner, "first backlog", domain.StatusBacklog)
	second := seedTicket(t, project, owner, "second backlog", domain.StatusBacklog)
	todo := seedTicket(t, project, owner, "first todo", domain.StatusTodo)

	assert.Equal(t, int32(0), first.Position)
	assert.Equal(t, int32(1), second.Position)
	// Each status column numbers independently.
	assert.Equal(t, int32(0), todo.Position)
}

func TestTicketRepository_ListByProjectBoardOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(testPool)

	project, owner := seedProject(t, "Ordered Board")

	backlog := seedTicket(t, project, owner, "backlog item", domain.StatusBacklog)
	done := seedTicket(t, project, owner, "done item", domain.StatusDone)
	backlog2 := seedTicket(t, project, owner, "second backlog item", domain.StatusBacklog)

	tickets, err := repo.ListByProject(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, tickets, 3)

	// Grouped by status, then by position.
	assert.Equal(t, backlog.ID, tickets[0].ID)
	assert.Equal(t, backlog2.ID, tickets[1].ID)
	assert.Equal(t, done.ID, tickets[2].ID)
}

func TestTicketRepository_UpdateRoundTripsNullables(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(testPool)

	project, owner := seedProject(t, "Nullable Board")
	ticket := seedTicket(t, project, owner, "assign me", domain.StatusTodo)

	assignee := seedUser(t, "assignee-"+uuid.NewString()[:8])
	due := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	now := time.Now().UTC()

	ticket.AssignedContributorID = &assignee.ID
	ticket.DueAt = &due
	ticket.UpdatedAt = &now

	updated, err := repo.Update(ctx, ticket)
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedContributorID)
	assert.Equal(t, assignee.ID, *updated.AssignedContributorID)
	require.NotNil(t, updated.DueAt)
	assert.WithinDuration(t, due, *updated.DueAt, time.Second)

	// Clearing works too.
	updated.AssignedContributorID = nil
	updated.DueAt = nil
	cleared, err := repo.Update(ctx, updated)
	require.NoError(t, err)
	assert.Nil(t, cleared.AssignedContributorID)
	assert.Nil(t, cleared.DueAt)
}

func TestTicketRepository_RepositionMovesBatch(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(testPool)

	project, owner := seedProject(t, "Reposition Board")

	a := seedTicket(t, project, owner, "a", domain.StatusTodo)
	b := seedTicket(t, project, owner, "b", domain.StatusTodo)

	// Swap the two and drag b into another column.
	moves := []ports.TicketMove{
		{TicketID: b.ID, Position: 0, Status: domain.StatusInProgress},
		{TicketID: a.ID, Position: 0, Status: domain.StatusTodo},
	}

	updated, err := repo.Reposition(ctx, project.ID, moves)
	require.NoError(t, err)
	require.Len(t, updated, 2)

	// Results come back in batch order.
	assert.Equal(t, b.ID, updated[0].ID)
	assert.Equal(t, domain.StatusInProgress, updated[0].TicketStatus)
	assert.Equal(t, a.ID, updated[1].ID)
	assert.Equal(t, int32(0), updated[1].Position)
}

func TestTicketRepository_RepositionForeignTicketRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(testPool)

	project, owner := seedProject(t, "Victim Board")
	other, otherOwner := seedProject(t, "Foreign Board")

	mine := seedTicket(t, project, owner, "mine", domain.StatusTodo)
	foreign := seedTicket(t, other, otherOwner, "not yours", domain.StatusTodo)

	moves := []ports.TicketMove{
		{TicketID: mine.ID, Position: 5, Status: domain.StatusDone},
		{TicketID: foreign.ID, Position: 0, Status: domain.StatusDone},
	}

	_, err := repo.Reposition(ctx, project.ID, moves)
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)

	// The first move was rolled back with the batch.
	unchanged, err := repo.GetByID(ctx, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTodo, unchanged.TicketStatus)
	assert.Equal(t, int32(0), unchanged.Position)
}

func TestTicketRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(testPool)

	project, owner := seedProject(t, "Deletable Board")
	ticket := seedTicket(t, project, owner, "short lived", domain.StatusBacklog)

	require.NoError(t, repo.Delete(ctx, ticket.ID))

	_, err := repo.GetByID(ctx, ticket.ID)
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, ticket.ID), apperrors.ErrTicketNotFound)
}
