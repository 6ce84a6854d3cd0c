package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive-backend/internal/core/domain"
	apperrors "github.com/taskhive/taskhive-backend/internal/core/errors"
	"github.com/taskhive/taskhive-backend/internal/core/mocks"
	"github.com/taskhive/taskhive-backend/internal/core/ports"
	"github.com/taskhive/taskhive-backend/internal/core/services"
)

type commentServiceFixture struct {
	repo      *mocks.MockCommentRepository
	ticketSvc *mocks.MockTicketService
	notifier  *mocks.MockNotifier
	svc       ports.CommentService
}

func newCommentServiceFixture() *commentServiceFixture {
	repo := mocks.NewMockCommentRepository()
	ticketSvc := mocks.NewMockTicketService()
	notifier := mocks.NewMockNotifier()

	return &commentServiceFixture{
		repo:      repo,
		ticketSvc: ticketSvc,
		notifier:  notifier,
		svc:       services.NewCommentService(repo, ticketSvc, notifier),
	}
}

func TestCommentService_CreateComment(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()
	creatorID := uuid.New()
	commenterID := uuid.New()

	ticket := &domain.Ticket{
		ID:        12,
		Title:     "Discussed ticket",
		ProjectID: projectID,
		CreatorID: creatorID,
	}

	t.Run("commenting on someone else's ticket notifies the creator", func(t *testing.T) {
		f := newCommentServiceFixture()

		f.ticketSvc.On("GetTicket", ctx, projectID, int64(12), commenterID).Return(ticket, nil)
		f.repo.On("Create", ctx, mock.MatchedBy(func(c *domain.Comment) bool {
			return c.TicketID == 12 && c.AuthorID == commenterID && c.Body == "looks good"
		})).Return(&domain.Comment{ID: 1, TicketID: 12, AuthorID: commenterID, Body: "looks good"}, nil)

		notified := make(chan struct{})
		f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(p ports.NotificationParams) bool {
			return p.RecipientUserID == creatorID && p.TicketID == 12
		})).Run(func(mock.Arguments) { close(notified) }).Return()

		comment, err := f.svc.CreateComment(ctx, ports.CreateCommentParams{
			ProjectID: projectID,
			TicketID:  12,
			ActorID:   commenterID,
			Body:      "looks good",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), comment.ID)

		select {
		case <-notified:
		case <-time.After(time.Second):
			t.Fatal("creator was never notified")
		}
	})

	t.Run("commenting on your own ticket stays quiet", func(t *testing.T) {
		f := newCommentServiceFixture()

		f.ticketSvc.On("GetTicket", ctx, projectID, int64(12), creatorID).Return(ticket, nil)
		f.repo.On("Create", ctx, mock.AnythingOfType("*domain.Comment")).
			Return(&domain.Comment{ID: 2, TicketID: 12, AuthorID: creatorID}, nil)

		_, err := f.svc.CreateComment(ctx, ports.CreateCommentParams{
			ProjectID: projectID,
			TicketID:  12,
			ActorID:   creatorID,
			Body:      "note to self",
		})

		require.NoError(t, err)
		f.notifier.AssertNotCalled(t, "Notify")
	})

	t.Run("no ticket access means no comment", func(t *testing.T) {
		f := newCommentServiceFixture()

		f.ticketSvc.On("GetTicket", ctx, projectID, int64(12), commenterID).
			Return(nil, apperrors.ErrTicketNotFound)

		_, err := f.svc.CreateComment(ctx, ports.CreateCommentParams{
			ProjectID: projectID,
			TicketID:  12,
			ActorID:   commenterID,
			Body:      "into the void",
		})

		assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
		f.repo.AssertNotCalled(t, "Create")
	})

	t.Run("blank body is rejected", func(t *testing.T) {
		f := newCommentServiceFixture()

		f.ticketSvc.On("GetTicket", ctx, projectID, int64(12), commenterID).Return(ticket, nil)

		_, err := f.svc.CreateComment(ctx, ports.CreateCommentParams{
			ProjectID: projectID,
			TicketID:  12,
			ActorID:   commenterID,
			Body:      "   ",
		})

		assert.ErrorIs(t, err, apperrors.ErrCommentBodyRequired)
		f.repo.AssertNotCalled(t, "Create")
	})
}

func TestCommentService_GetCommentsForTicket(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()
	viewerID := uuid.New()

	ticket := &domain.Ticket{ID: 5, ProjectID: projectID, CreatorID: viewerID}

	t.Run("viewer with access gets the thread", func(t *testing.T) {
		f := newCommentServiceFixture()

		f.ticketSvc.On("GetTicket", ctx, projectID, int64(5), viewerID).Return(ticket, nil)
		f.repo.On("ListByTicketID", ctx, int64(5)).Return([]*domain.Comment{
			{ID: 1, TicketID: 5, Body: "first"},
			{ID: 2, TicketID: 5, Body: "second"},
		}, nil)

		comments, err := f.svc.GetCommentsForTicket(ctx, projectID, 5, viewerID)
		require.NoError(t, err)
		assert.Len(t, comments, 2)
	})

	t.Run("access check failure propagates", func(t *testing.T) {
		f := newCommentServiceFixture()

		f.ticketSvc.On("GetTicket", ctx, projectID, int64(5), viewerID).
			Return(nil, apperrors.ErrNotProjectMember)

		_, err := f.svc.GetCommentsForTicket(ctx, projectID, 5, viewerID)
		assert.ErrorIs(t, err, apperrors.ErrNotProjectMember)
		f.repo.AssertNotCalled(t, "ListByTicketID")
	})
}
