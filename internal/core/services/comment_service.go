package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-backend/internal/core/domain"
	"github.com/taskhive/taskhive-backend/internal/core/ports"
)

// CommentService implements the business logic for comments. Comments are
// not broadcast to the board; the author's ticket view refetches them.
type CommentService struct {
	commentRepo ports.CommentRepository
	ticketSvc   ports.TicketService
	notifier    ports.Notifier
}

// Ensure implementation matches the interface.
var _ ports.CommentService = (*CommentService)(nil)

// NewCommentService creates a new service for comment logic.
func NewCommentService(
	commentRepo ports.CommentRepository,
	ticketSvc ports.TicketService,
	notifier ports.Notifier,
) ports.CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		ticketSvc:   ticketSvc,
		notifier:    notifier,
	}
}

// CreateComment adds a new comment to a ticket.
func (s *CommentService) CreateComment(ctx context.Context, params ports.CreateCommentParams) (*domain.Comment, error) {
	// 1. Check the actor can access the ticket they're commenting on.
	// GetTicket carries the membership and project-scoping checks, and we
	// need the ticket for the notification anyway.
	ticket, err := s.ticketSvc.GetTicket(ctx, params.ProjectID, params.TicketID, params.ActorID)
	if err != nil {
		return nil, err
	}

	// 2. Create the domain entity.
	commentParams := domain.CommentParams{
		TicketID: params.TicketID,
		AuthorID: params.ActorID,
		Body:     params.Body,
	}
	comment, err := domain.NewComment(commentParams)
	if err != nil {
		return nil, err // e.g., validation error
	}

	// 3. Persist the comment.
	newComment, err := s.commentRepo.Create(ctx, comment)
	if err != nil {
		return nil, err
	}

	// 4. Send email notification (asynchronously)
	// We notify the creator *unless* they are the one who made the comment.
	if ticket.CreatorID != params.ActorID {
		go s.notifier.Notify(context.Background(), ports.NotificationParams{
			RecipientUserID: ticket.CreatorID,
			Subject:         fmt.Sprintf("A new comment was added to your ticket: #%d", ticket.ID),
			Message:         fmt.Sprintf("A new comment has been added to your ticket '%s'.", ticket.Title),
			TicketID:        ticket.ID,
		})
	}

	return newComment, nil
}

// GetCommentsForTicket retrieves all comments for a specific ticket.
func (s *CommentService) GetCommentsForTicket(ctx context.Context, projectID uuid.UUID, ticketID int64, viewerID uuid.UUID) ([]*domain.Comment, error) {
	// Access to the ticket is a prerequisite for reading its comments.
	if _, err := s.ticketSvc.GetTicket(ctx, projectID, ticketID, viewerID); err != nil {
		return nil, err
	}

	return s.commentRepo.ListByTicketID(ctx, ticketID)
}
