package store

import (
	"context"
	"errors"

	"github.com/agroscan/agroscan/pkg/models"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("resource not found")

// InspectionDraft is an inspection before persistence: everything except
// the server-assigned id and created_at. Callers must never construct a
// full Inspection from a draft without a successful insert.
type InspectionDraft struct {
	UserName             string
	ImageURL             string
	PlantType            string
	PlantTypeTamil       string
	HealthStatus         models.HealthStatus
	ConfidenceScore      int
	Description          string
	DescriptionTamil     string
	Recommendations      []string
	RecommendationsTamil []string
}

// Store is the data access interface. All persistence operations go through here.
//
// Delete semantics: deleting an id that does not exist is treated as
// success. The delete is idempotent; the row is gone either way, and the
// controller removes the cached entry on success only.
type Store interface {
	Ping(ctx context.Context) error

	// InsertInspection persists a draft and returns the stored row with its
	// server-assigned id and created_at.
	InsertInspection(ctx context.Context, draft InspectionDraft) (*models.Inspection, error)

	// ListInspections returns inspections ordered by created_at descending.
	// An empty userName returns all rows.
	ListInspections(ctx context.Context, userName string) ([]*models.Inspection, error)

	DeleteInspection(ctx context.Context, id uuid.UUID) error

	// DeleteAllInspections removes every row in scope. An empty userName
	// clears the whole table.
	DeleteAllInspections(ctx context.Context, userName string) error
}
