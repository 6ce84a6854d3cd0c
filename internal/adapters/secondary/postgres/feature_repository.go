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

// FeatureRepository is the secondary adapter for feature persistence.
type FeatureRepository struct {
	pool *pgxpool.Pool
}

var _ ports.FeatureRepository = (*FeatureRepository)(nil)

// NewFeatureRepository creates a new feature repository.
func NewFeatureRepository(pool *pgxpool.Pool) ports.FeatureRepository {
	return &FeatureRepository{pool: pool}
}

const featureColumns = `id, project_id, title, description, position, created_at, updated_at`

func scanFeature(row pgx.Row) (*domain.Feature, error) {
	var (
		feature   domain.Feature
		updatedAt pgtype.Timestamptz
	)
	err := row.Scan(
		&feature.ID,
		&feature.ProjectID,
		&feature.Title,
		&feature.Description,
		&feature.Position,
		&feature.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	feature.UpdatedAt = utils.FromNullTime(updatedAt)
	return &feature, nil
}

// Create persists a new feature, assigning it the next position in the
// project.
func (r *FeatureRepository) Create(ctx context.Context, feature *domain.Feature) (*domain.Feature, error) {
	query := `
		INSERT INTO features (project_id, title, description, position, created_at)
		VALUES (
			$1, $2, $3,
			(SELECT COALESCE(MAX(position) + 1, 0) FROM features WHERE project_id = $1),
			$4
		)
		RETURNING ` + featureColumns

	row := r.pool.QueryRow(ctx, query,
		utils.ToUUID(feature.ProjectID),
		feature.Title,
		feature.Description,
		feature.CreatedAt,
	)

	created, err := scanFeature(row)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a feature by ID.
func (r *FeatureRepository) GetByID(ctx context.Context, id int64) (*domain.Feature, error) {
	query := `SELECT ` + featureColumns + ` FROM features WHERE id = $1`
	feature, err := scanFeature(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFeatureNotFound
		}
		return nil, err
	}
	return feature, nil
}

// Update persists changes to an existing feature.
func (r *FeatureRepository) Update(ctx context.Context, feature *domain.Feature) (*domain.Feature, error) {
	query := `
		UPDATE features
		SET title = $2, description = $3, position = $4, updated_at = $5
		WHERE id = $1
		RETURNING ` + featureColumns

	row := r.pool.QueryRow(ctx, query,
		feature.ID,
		feature.Title,
		feature.Description,
		feature.Position,
		utils.ToNullTime(feature.UpdatedAt),
	)

	updated, err := scanFeature(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFeatureNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a feature. Tickets keep their rows; the foreign key nulls
// their feature reference.
func (r *FeatureRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM features WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrFeatureNotFound
	}
	return nil
}

// ListByProject returns a project's features in position order.
func (r *FeatureRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Feature, error) {
	query := `SELECT ` + featureColumns + ` FROM features WHERE project_id = $1 ORDER BY position, id`

	rows, err := r.pool.Query(ctx, query, utils.ToUUID(projectID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	features := make([]*domain.Feature, 0)
	for rows.Next() {
		feature, err := scanFeature(rows)
		if err != nil {
			return nil, err
		}
		features = append(features, feature)
	}
	return features, rows.Err()
}
