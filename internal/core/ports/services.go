package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-backend/internal/core/domain"
)

// AuthService defines the port for authentication business logic.
type AuthService interface {
	Register(ctx context.Context, params domain.UserRegistrationParams, orgID uuid.UUID) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// CreateProjectParams defines the input for creating a project.
type CreateProjectParams struct {
	Name        string
	Description string
	OwnerID     uuid.UUID
	OrgID       uuid.UUID
}

// UpdateProjectParams defines the input for patching a project.
type UpdateProjectParams struct {
	ProjectID uuid.UUID
	ActorID   uuid.UUID
	Update    domain.ProjectUpdate
}

// ProjectService defines the port for project business logic.
type ProjectService interface {
	CreateProject(ctx context.Context, params CreateProjectParams) (*domain.Project, error)
	GetProject(ctx context.Context, projectID, viewerID uuid.UUID) (*domain.Project, error)
	UpdateProject(ctx context.Context, params UpdateProjectParams) (*domain.Project, error)
	DeleteProject(ctx context.Context, projectID, actorID uuid.UUID) error
	ListProjects(ctx context.Context, viewerID uuid.UUID) ([]*domain.Project, error)
	// RequireMember returns ErrNotProjectMember unless the user belongs to
	// the project. Shared by every project-scoped service operation.
	RequireMember(ctx context.Context, projectID, userID uuid.UUID) error
}

// CreateFeatureParams defines the input for creating a feature.
type CreateFeatureParams struct {
	ProjectID   uuid.UUID
	ActorID     uuid.UUID
	Title       string
	Description string
}

// UpdateFeatureParams defines the input for patching a feature.
type UpdateFeatureParams struct {
	ProjectID uuid.UUID
	FeatureID int64
	ActorID   uuid.UUID
	Update    domain.FeatureUpdate
}

// FeatureService defines the port for feature business logic.
type FeatureService interface {
	CreateFeature(ctx context.Context, params CreateFeatureParams) (*domain.Feature, error)
	UpdateFeature(ctx context.Context, params UpdateFeatureParams) (*domain.Feature, error)
	DeleteFeature(ctx context.Context, projectID uuid.UUID, featureID int64, actorID uuid.UUID) error
	ListFeatures(ctx context.Context, projectID, viewerID uuid.UUID) ([]*domain.Feature, error)
}

// CreateTicketParams defines the required input for creating a new ticket.
type CreateTicketParams struct {
	ProjectID      uuid.UUID
	Title          string
	Description    string
	TicketType     domain.TicketType
	TicketPriority domain.TicketPriority
	FeatureID      *int64
	DueAt          *time.Time
	CreatorID      uuid.UUID
}

// UpdateTicketParams defines the input for patching a ticket.
type UpdateTicketParams struct {
	ProjectID uuid.UUID
	TicketID  int64
	ActorID   uuid.UUID
	Update    domain.TicketUpdate
}

// RepositionTicketsParams defines the input for a batch board rearrangement.
type RepositionTicketsParams struct {
	ProjectID uuid.UUID
	ActorID   uuid.UUID
	Moves     []TicketMove
}

// TicketService defines the core business operations for managing tickets.
type TicketService interface {
	CreateTicket(ctx context.Context, params CreateTicketParams) (*domain.Ticket, error)
	GetTicket(ctx context.Context, projectID uuid.UUID, ticketID int64, viewerID uuid.UUID) (*domain.Ticket, error)
	ListTickets(ctx context.Context, projectID, viewerID uuid.UUID) ([]*domain.Ticket, error)
	UpdateTicket(ctx context.Context, params UpdateTicketParams) (*domain.Ticket, error)
	RepositionTickets(ctx context.Context, params RepositionTicketsParams) ([]*domain.Ticket, error)
	DeleteTicket(ctx context.Context, projectID uuid.UUID, ticketID int64, actorID uuid.UUID) error
	VerifyTicket(ctx context.Context, projectID uuid.UUID, ticketID int64, verifierID uuid.UUID) (*domain.Ticket, error)
}

// CreateCommentParams defines the input for creating a comment.
type CreateCommentParams struct {
	ProjectID uuid.UUID
	TicketID  int64
	ActorID   uuid.UUID
	Body      string
}

// CommentService defines the port for comment-related business logic.
type CommentService interface {
	CreateComment(ctx context.Context, params CreateCommentParams) (*domain.Comment, error)
	GetCommentsForTicket(ctx context.Context, projectID uuid.UUID, ticketID int64, viewerID uuid.UUID) ([]*domain.Comment, error)
}

// NotificationParams defines the input for sending a notification.
type NotificationParams struct {
	RecipientUserID uuid.UUID
	Subject         string
	Message         string
	TicketID        int64
}

// Notifier defines the port for sending asynchronous notifications.
type Notifier interface {
	Notify(ctx context.Context, params NotificationParams)
}

// EventPublisher defines the port services use to announce committed
// mutations. Publish is synchronous dispatch and fire-and-forget: the
// caller returns its own response independently of broadcast delivery.
type EventPublisher interface {
	Publish(event domain.Event)
}
