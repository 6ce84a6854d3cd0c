package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-backend/internal/core/domain"
	apperrors "github.com/taskhive/taskhive-backend/internal/core/errors"
	"github.com/taskhive/taskhive-backend/internal/core/ports"
)

// TicketService implements business logic for ticket management. Every
// operation checks project membership first; every successful mutation
// publishes exactly one event after the repository commits.
type TicketService struct {
	ticketRepo ports.TicketRepository
	projectSvc ports.ProjectService
	notifier   ports.Notifier
	publisher  ports.EventPublisher
	wg         sync.WaitGroup
}

var _ ports.TicketService = (*TicketService)(nil)

// NewTicketService creates a new ticket service
func NewTicketService(
	ticketRepo ports.TicketRepository,
	projectSvc ports.ProjectService,
	notifier ports.Notifier,
	publisher ports.EventPublisher,
) *TicketService {
	return &TicketService{
		ticketRepo: ticketRepo,
		projectSvc: projectSvc,
		notifier:   notifier,
		publisher:  publisher,
	}
}

// CreateTicket handles the use case for adding a new ticket to the board
func (s *TicketService) CreateTicket(ctx context.Context, params ports.CreateTicketParams) (*domain.Ticket, error) {
	// 1. Membership check
	if err := s.projectSvc.RequireMember(ctx, params.ProjectID, params.CreatorID); err != nil {
		return nil, err
	}

	// 2. Create domain entity with validation
	ticketParams := domain.TicketParams{
		Title:          params.Title,
		Description:    params.Description,
		TicketType:     params.TicketType,
		TicketPriority: params.TicketPriority,
		ProjectID:      params.ProjectID,
		FeatureID:      params.FeatureID,
		CreatorID:      params.CreatorID,
		DueAt:          params.DueAt,
	}

	ticket, err := domain.NewTicket(ticketParams)
	if err != nil {
		return nil, err // Validation errors are returned here
	}

	// 3. Persist the ticket (position assigned on insert)
	created, err := s.ticketRepo.Create(ctx, ticket)
	if err != nil {
		return nil, err
	}

	// 4. Announce to the project room
	s.publisher.Publish(domain.NewEvent(domain.EventTicketCreated, created.ProjectID, params.CreatorID, created))

	return created, nil
}

// GetTicket retrieves a specific ticket for a project member
func (s *TicketService) GetTicket(ctx context.Context, projectID uuid.UUID, ticketID int64, viewerID uuid.UUID) (*domain.Ticket, error) {
	if err := s.projectSvc.RequireMember(ctx, projectID, viewerID); err != nil {
		return nil, err
	}

	return s.getProjectTicket(ctx, projectID, ticketID)
}

// ListTickets returns the project's board: tickets ordered by status column
// and position.
func (s *TicketService) ListTickets(ctx context.Context, projectID, viewerID uuid.UUID) ([]*domain.Ticket, error) {
	if err := s.projectSvc.RequireMember(ctx, projectID, viewerID); err != nil {
		return nil, err
	}

	return s.ticketRepo.ListByProject(ctx, projectID)
}

// UpdateTicket patches a ticket's fields and announces the change
func (s *TicketService) UpdateTicket(ctx context.Context, params ports.UpdateTicketParams) (*domain.Ticket, error) {
	if err := s.projectSvc.RequireMember(ctx, params.ProjectID, params.ActorID); err != nil {
		return nil, err
	}

	ticket, err := s.getProjectTicket(ctx, params.ProjectID, params.TicketID)
	if err != nil {
		return nil, err
	}

	previousAssignee := ticket.AssignedContributorID

	// Apply field changes (domain validates each field)
	if err := ticket.Apply(params.Update); err != nil {
		return nil, err
	}

	updated, err := s.ticketRepo.Update(ctx, ticket)
	if err != nil {
		return nil, err
	}

	// Notify a newly assigned contributor, unless they assigned themselves
	if updated.AssignedContributorID != nil &&
		(previousAssignee == nil || *previousAssignee != *updated.AssignedContributorID) &&
		*updated.AssignedContributorID != params.ActorID {
		s.notifyAssignment(updated)
	}

	s.publisher.Publish(domain.NewEvent(domain.EventTicketUpdated, updated.ProjectID, params.ActorID, updated))

	return updated, nil
}

// RepositionTickets applies a batch board rearrangement. The repository
// runs the whole batch in one transaction; a single event carries every
// updated ticket so watching boards repaint once.
func (s *TicketService) RepositionTickets(ctx context.Context, params ports.RepositionTicketsParams) ([]*domain.Ticket, error) {
	if err := s.projectSvc.RequireMember(ctx, params.ProjectID, params.ActorID); err != nil {
		return nil, err
	}

	if len(params.Moves) == 0 {
		return nil, apperrors.ErrEmptyReposition
	}

	for _, move := range params.Moves {
		if !domain.IsValidStatus(move.Status) {
			return nil, apperrors.ErrInvalidStatus
		}
	}

	tickets, err := s.ticketRepo.Reposition(ctx, params.ProjectID, params.Moves)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(domain.NewEvent(domain.EventTicketsRearranged, params.ProjectID, params.ActorID, tickets))

	return tickets, nil
}

// DeleteTicket removes a ticket from the board
func (s *TicketService) DeleteTicket(ctx context.Context, projectID uuid.UUID, ticketID int64, actorID uuid.UUID) error {
	if err := s.projectSvc.RequireMember(ctx, projectID, actorID); err != nil {
		return err
	}

	if _, err := s.getProjectTicket(ctx, projectID, ticketID); err != nil {
		return err
	}

	if err := s.ticketRepo.Delete(ctx, ticketID); err != nil {
		return err
	}

	// The ticket row is gone, so the event carries only its ID
	s.publisher.Publish(domain.NewEvent(domain.EventTicketDeleted, projectID, actorID, ticketID))

	return nil
}

// VerifyTicket records that a member verified a done ticket's completion
func (s *TicketService) VerifyTicket(ctx context.Context, projectID uuid.UUID, ticketID int64, verifierID uuid.UUID) (*domain.Ticket, error) {
	if err := s.projectSvc.RequireMember(ctx, projectID, verifierID); err != nil {
		return nil, err
	}

	ticket, err := s.getProjectTicket(ctx, projectID, ticketID)
	if err != nil {
		return nil, err
	}

	if err := ticket.Verify(verifierID); err != nil {
		return nil, err
	}

	updated, err := s.ticketRepo.Update(ctx, ticket)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(domain.NewEvent(domain.EventTicketUpdated, updated.ProjectID, verifierID, updated))

	return updated, nil
}

// getProjectTicket fetches a ticket and confirms it belongs to the project
// named in the URL. Tickets from other projects read as not found.
func (s *TicketService) getProjectTicket(ctx context.Context, projectID uuid.UUID, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.ProjectID != projectID {
		return nil, apperrors.ErrTicketNotFound
	}
	return ticket, nil
}

// notifyAssignment sends an email notification for a new assignment
func (s *TicketService) notifyAssignment(ticket *domain.Ticket) {
	assigneeID := *ticket.AssignedContributorID

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// Use background context since the HTTP request may be done
		ctx := context.Background()

		s.notifier.Notify(ctx, ports.NotificationParams{
			RecipientUserID: assigneeID,
			Subject:         fmt.Sprintf("You have been assigned ticket #%d", ticket.ID),
			Message:         fmt.Sprintf("The ticket '%s' was assigned to you.", ticket.Title),
			TicketID:        ticket.ID,
		})
	}()
}

// Shutdown waits for in-flight notifications to finish.
func (s *TicketService) Shutdown() {
	s.wg.Wait()
}
