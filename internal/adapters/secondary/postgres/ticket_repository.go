package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/taskhive-backend/internal/core/domain"
	apperrors "github.com/taskhive/taskhive-backend/internal/core/errors"
	"github.com/taskhive/taskhive-backend/internal/core/ports"
	"github.com/taskhive/taskhive-backend/internal/core/utils"
)

// TicketRepository is the secondary adapter for ticket persistence.
type TicketRepository struct {
	pool *pgxpool.Pool
	tm   *TransactionManager
}

var _ ports.TicketRepository = (*TicketRepository)(nil)

// NewTicketRepository creates a new ticket repository.
func NewTicketRepository(pool *pgxpool.Pool) ports.TicketRepository {
	return &TicketRepository{
		pool: pool,
		tm:   NewTransactionManager(pool),
	}
}

const ticketColumns = `id, title, description, ticket_type, ticket_priority, ticket_status,
	position, project_id, feature_id, creator_id, assigned_contributor_id,
	due_at, verifier_id, verified_at, created_at, updated_at`

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket     domain.Ticket
		featureID  pgtype.Int8
		assignee   pgtype.UUID
		dueAt      pgtype.Timestamptz
		verifierID pgtype.UUID
		verifiedAt pgtype.Timestamptz
		updatedAt  pgtype.Timestamptz
	)
	err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.TicketType,
		&ticket.TicketPriority,
		&ticket.TicketStatus,
		&ticket.Position,
		&ticket.ProjectID,
		&featureID,
		&ticket.CreatorID,
		&assignee,
		&dueAt,
		&verifierID,
		&verifiedAt,
		&ticket.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	ticket.FeatureID = utils.FromNullInt8(featureID)
	ticket.AssignedContributorID = utils.FromNullUUID(assignee)
	ticket.DueAt = utils.FromNullTime(dueAt)
	ticket.VerifierID = utils.FromNullUUID(verifierID)
	ticket.VerifiedAt = utils.FromNullTime(verifiedAt)
	ticket.UpdatedAt = utils.FromNullTime(updatedAt)
	return &ticket, nil
}

// Create persists a new ticket, assigning it the next position in its
// project/status column.
func (r *TicketRepository) Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	query := `
		INSERT INTO tickets (
			title, description, ticket_type, ticket_priority, ticket_status,
			position, project_id, feature_id, creator_id, due_at, created_at
		)
		VALUES (
			$1, $2, $3, $4, $5,
			(SELECT COALESCE(MAX(position) + 1, 0) FROM tickets WHERE project_id = $6 AND ticket_status = $5),
			$6, $7, $8, $9, $10
		)
		RETURNING ` + ticketColumns

	row := r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		string(ticket.TicketType),
		string(ticket.TicketPriority),
		string(ticket.TicketStatus),
		utils.ToUUID(ticket.ProjectID),
		utils.ToNullInt8(ticket.FeatureID),
		utils.ToUUID(ticket.CreatorID),
		utils.ToNullTime(ticket.DueAt),
		ticket.CreatedAt,
	)

	created, err := scanTicket(row)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a ticket by ID.
func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}
	return ticket, nil
}

// Update persists changes to an existing ticket.
func (r *TicketRepository) Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	query := `
		UPDATE tickets
		SET title = $2, description = $3, ticket_type = $4, ticket_priority = $5,
			ticket_status = $6, feature_id = $7, assigned_contributor_id = $8,
			due_at = $9, verifier_id = $10, verified_at = $11, updated_at = $12
		WHERE id = $1
		RETURNING ` + ticketColumns

	row := r.pool.QueryRow(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		string(ticket.TicketType),
		string(ticket.TicketPriority),
		string(ticket.TicketStatus),
		utils.ToNullInt8(ticket.FeatureID),
		utils.ToNullUUID(ticket.AssignedContributorID),
		utils.ToNullTime(ticket.DueAt),
		utils.ToNullUUID(ticket.VerifierID),
		utils.ToNullTime(ticket.VerifiedAt),
		utils.ToNullTime(ticket.UpdatedAt),
	)

	updated, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a ticket. Comments cascade.
func (r *TicketRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTicketNotFound
	}
	return nil
}

// ListByProject returns a project's tickets in board order: grouped by
// status column, then by position within the column.
func (r *TicketRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE project_id = $1 ORDER BY ticket_status, position, id`

	rows, err := r.pool.Query(ctx, query, utils.ToUUID(projectID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]*domain.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

// Reposition applies a batch of board moves in one transaction. A move
// naming a ticket outside the project rolls the whole batch back. The
// updated tickets are returned in batch order.
func (r *TicketRepository) Reposition(ctx context.Context, projectID uuid.UUID, moves []ports.TicketMove) ([]*domain.Ticket, error) {
	query := `
		UPDATE tickets
		SET position = $3, ticket_status = $4, updated_at = now()
		WHERE id = $1 AND project_id = $2
		RETURNING ` + ticketColumns

	updated := make([]*domain.Ticket, 0, len(moves))

	err := r.tm.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for _, move := range moves {
			row := tx.QueryRow(ctx, query,
				move.TicketID,
				utils.ToUUID(projectID),
				move.Position,
				string(move.Status),
			)
			ticket, err := scanTicket(row)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return apperrors.ErrTicketNotFound
				}
				return err
			}
			updated = append(updated, ticket)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
