package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-backend/internal/core/domain"
)

// UserRepository defines the port for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// ProjectRepository defines the port for project persistence and membership.
type ProjectRepository interface {
	// Create persists the project and the owner's membership row in one
	// transaction.
	Create(ctx context.Context, project *domain.Project) (*domain.Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	GetBySlug(ctx context.Context, orgID uuid.UUID, slug string) (*domain.Project, error)
	Update(ctx context.Context, project *domain.Project) (*domain.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByMember(ctx context.Context, userID uuid.UUID) ([]*domain.Project, error)
	AddMember(ctx context.Context, projectID, userID uuid.UUID, role domain.ProjectRole) error
	IsMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error)
}

// FeatureRepository defines the port for feature persistence.
type FeatureRepository interface {
	Create(ctx context.Context, feature *domain.Feature) (*domain.Feature, error)
	GetByID(ctx context.Context, id int64) (*domain.Feature, error)
	Update(ctx context.Context, feature *domain.Feature) (*domain.Feature, error)
	Delete(ctx context.Context, id int64) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Feature, error)
}

// TicketMove is one entry of a batch board rearrangement.
type TicketMove struct {
	TicketID int64
	Position int32
	Status   domain.TicketStatus
}

// TicketRepository defines the port for ticket persistence.
type TicketRepository interface {
	// Create persists the ticket, assigning the next position in its
	// project/status column.
	Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	Delete(ctx context.Context, id int64) error
	// ListByProject returns the project's tickets ordered by status column
	// and position, for board rendering.
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Ticket, error)
	// Reposition applies all moves in one transaction. Either every ticket
	// in the batch is updated or none, and the updated tickets come back in
	// batch order.
	Reposition(ctx context.Context, projectID uuid.UUID, moves []TicketMove) ([]*domain.Ticket, error)
}

// CommentRepository defines the port for comment persistence.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	ListByTicketID(ctx context.Context, ticketID int64) ([]*domain.Comment, error)
}
