package store

import (
	"context"
	"sync"
	"time"

	"github.com/agroscan/agroscan/pkg/models"
	"github.com/google/uuid"
)

// MemoryStore keeps inspections in process memory for local-only mode,
// where no database is configured. Ids and timestamps are generated
// locally; everything is lost on restart.
type MemoryStore struct {
	mu          sync.Mutex
	inspections []*models.Inspection
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Ping(_ context.Context) error { return nil }

func (s *MemoryStore) InsertInspection(_ context.Context, draft InspectionDraft) (*models.Inspection, error) {
	i := &models.Inspection{
		ID:                   uuid.New(),
		CreatedAt:            time.Now().UTC(),
		UserName:             draft.UserName,
		ImageURL:             draft.ImageURL,
		PlantType:            draft.PlantType,
		PlantTypeTamil:       draft.PlantTypeTamil,
		HealthStatus:         draft.HealthStatus,
		ConfidenceScore:      draft.ConfidenceScore,
		Description:          draft.Description,
		DescriptionTamil:     draft.DescriptionTamil,
		Recommendations:      append([]string(nil), draft.Recommendations...),
		RecommendationsTamil: append([]string(nil), draft.RecommendationsTamil...),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Most recent first, matching the Postgres ordering.
	s.inspections = append([]*models.Inspection{i}, s.inspections...)

	copied := *i
	return &copied, nil
}

func (s *MemoryStore) ListInspections(_ context.Context, userName string) ([]*models.Inspection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Inspection, 0, len(s.inspections))
	for _, i := range s.inspections {
		if userName != "" && i.UserName != userName {
			continue
		}
		copied := *i
		out = append(out, &copied)
	}
	return out, nil
}

func (s *MemoryStore) DeleteInspection(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for idx, i := range s.inspections {
		if i.ID == id {
			s.inspections = append(s.inspections[:idx], s.inspections[idx+1:]...)
			return nil
		}
	}
	// Idempotent, same as the Postgres store.
	return nil
}

func (s *MemoryStore) DeleteAllInspections(_ context.Context, userName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userName == "" {
		s.inspections = nil
		return nil
	}
	kept := s.inspections[:0]
	for _, i := range s.inspections {
		if i.UserName != userName {
			kept = append(kept, i)
		}
	}
	s.inspections = kept
	return nil
}

var _ Store = (*MemoryStore)(nil)
