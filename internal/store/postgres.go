package store

import (
	"context"
	"fmt"

	"github.com/agroscan/agroscan/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const inspectionColumns = `id, created_at, user_name, image_url, plant_type, plant_type_tamil,
	 health_status, confidence_score, description, description_tamil,
	 recommendations, recommendations_tamil`

func (s *PostgresStore) InsertInspection(ctx context.Context, draft InspectionDraft) (*models.Inspection, error) {
	var i models.Inspection
	err := s.pool.QueryRow(ctx,
		`INSERT INTO inspections (user_name, image_url, plant_type, plant_type_tamil,
		   health_status, confidence_score, description, description_tamil,
		   recommendations, recommendations_tamil)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+inspectionColumns,
		draft.UserName, draft.ImageURL, draft.PlantType, draft.PlantTypeTamil,
		string(draft.HealthStatus), draft.ConfidenceScore, draft.Description,
		draft.DescriptionTamil, draft.Recommendations, draft.RecommendationsTamil,
	).Scan(&i.ID, &i.CreatedAt, &i.UserName, &i.ImageURL, &i.PlantType, &i.PlantTypeTamil,
		&i.HealthStatus, &i.ConfidenceScore, &i.Description, &i.DescriptionTamil,
		&i.Recommendations, &i.RecommendationsTamil)
	if err != nil {
		return nil, fmt.Errorf("insert inspection: %w", err)
	}
	return &i, nil
}

func (s *PostgresStore) ListInspections(ctx context.Context, userName string) ([]*models.Inspection, error) {
	query := `SELECT ` + inspectionColumns + ` FROM inspections`
	args := []any{}
	if userName != "" {
		query += ` WHERE user_name = $1`
		args = append(args, userName)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inspections: %w", err)
	}
	defer rows.Close()

	var inspections []*models.Inspection
	for rows.Next() {
		var i models.Inspection
		if err := rows.Scan(&i.ID, &i.CreatedAt, &i.UserName, &i.ImageURL, &i.PlantType,
			&i.PlantTypeTamil, &i.HealthStatus, &i.ConfidenceScore, &i.Description,
			&i.DescriptionTamil, &i.Recommendations, &i.RecommendationsTamil); err != nil {
			return nil, fmt.Errorf("scan inspection: %w", err)
		}
		inspections = append(inspections, &i)
	}
	return inspections, rows.Err()
}

// DeleteInspection removes one row. A missing row is not an error; the
// delete is idempotent.
func (s *PostgresStore) DeleteInspection(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM inspections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete inspection: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteAllInspections(ctx context.Context, userName string) error {
	query := `DELETE FROM inspections`
	args := []any{}
	if userName != "" {
		query += ` WHERE user_name = $1`
		args = append(args, userName)
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete all inspections: %w", err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
