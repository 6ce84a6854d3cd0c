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

// ProjectRepository is the secondary adapter for project persistence and
// membership.
type ProjectRepository struct {
	pool *pgxpool.Pool
	tm   *TransactionManager
}

var _ ports.ProjectRepository = (*ProjectRepository)(nil)

// NewProjectRepository creates a new project repository.
func NewProjectRepository(pool *pgxpool.Pool) ports.ProjectRepository {
	return &ProjectRepository{
		pool: pool,
		tm:   NewTransactionManager(pool),
	}
}

const projectColumns = `id, organization_id, name, slug, description, owner_id, created_at, updated_at`

func scanProject(row pgx.Row) (*domain.Project, error) {
	var (
		project   domain.Project
		updatedAt pgtype.Timestamptz
	)
	err := row.Scan(
		&project.ID,
		&project.OrganizationID,
		&project.Name,
		&project.Slug,
		&project.Description,
		&project.OwnerID,
		&project.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	project.UpdatedAt = utils.FromNullTime(updatedAt)
	return &project, nil
}

// Create persists a new project and the owner's membership in one
// transaction.
func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	var created *domain.Project

	err := r.tm.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		query := `
			INSERT INTO projects (id, organization_id, name, slug, description, owner_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING ` + projectColumns

		row := tx.QueryRow(ctx, query,
			utils.ToUUID(project.ID),
			utils.ToUUID(project.OrganizationID),
			project.Name,
			project.Slug,
			project.Description,
			utils.ToUUID(project.OwnerID),
			project.CreatedAt,
		)

		var scanErr error
		created, scanErr = scanProject(row)
		if scanErr != nil {
			if _, ok := uniqueViolation(scanErr); ok {
				return apperrors.ErrSlugTaken
			}
			return scanErr
		}

		memberQuery := `
			INSERT INTO project_members (project_id, user_id, role, added_at)
			VALUES ($1, $2, $3, now())`

		_, err := tx.Exec(ctx, memberQuery,
			utils.ToUUID(created.ID),
			utils.ToUUID(project.OwnerID),
			string(domain.RoleOwner),
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a project by ID.
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	project, err := scanProject(r.pool.QueryRow(ctx, query, utils.ToUUID(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

// GetBySlug retrieves a project by its slug within an organization.
func (r *ProjectRepository) GetBySlug(ctx context.Context, orgID uuid.UUID, slug string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE organization_id = $1 AND slug = $2`
	project, err := scanProject(r.pool.QueryRow(ctx, query, utils.ToUUID(orgID), slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

// Update persists changes to an existing project.
func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	query := `
		UPDATE projects
		SET name = $2, description = $3, updated_at = $4
		WHERE id = $1
		RETURNING ` + projectColumns

	row := r.pool.QueryRow(ctx, query,
		utils.ToUUID(project.ID),
		project.Name,
		project.Description,
		utils.ToNullTime(project.UpdatedAt),
	)

	updated, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a project. Tickets, features and memberships cascade.
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, utils.ToUUID(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProjectNotFound
	}
	return nil
}

// ListByMember returns every project the user is a member of, newest first.
func (r *ProjectRepository) ListByMember(ctx context.Context, userID uuid.UUID) ([]*domain.Project, error) {
	query := `
		SELECT p.id, p.organization_id, p.name, p.slug, p.description, p.owner_id, p.created_at, p.updated_at
		FROM projects p
		JOIN project_members pm ON pm.project_id = p.id
		WHERE pm.user_id = $1
		ORDER BY p.created_at DESC`

	rows, err := r.pool.Query(ctx, query, utils.ToUUID(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]*domain.Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

// AddMember inserts a membership row. Adding an existing member is a no-op.
func (r *ProjectRepository) AddMember(ctx context.Context, projectID, userID uuid.UUID, role domain.ProjectRole) error {
	query := `
		INSERT INTO project_members (project_id, user_id, role, added_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (project_id, user_id) DO NOTHING`

	_, err := r.pool.Exec(ctx, query, utils.ToUUID(projectID), utils.ToUUID(userID), string(role))
	return err
}

// IsMember reports whether the user belongs to the project.
func (r *ProjectRepository) IsMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM project_members WHERE project_id = $1 AND user_id = $2)`

	var exists bool
	err := r.pool.QueryRow(ctx, query, utils.ToUUID(projectID), utils.ToUUID(userID)).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
