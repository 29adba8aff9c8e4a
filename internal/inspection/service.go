// Package inspection implements the application state controller: it owns
// the in-memory inspection list and mediates every mutation between the
// classifier and the store.
//
// The central invariant is remote-then-local ordering: the cached list is a
// read-through cache of remote state, never a source of truth that can
// diverge and later resync. No mutation touches the cache before the
// remote call has succeeded.
package inspection

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/agroscan/agroscan/internal/store"
	"github.com/agroscan/agroscan/pkg/models"
	"github.com/google/uuid"
)

var (
	// ErrNotConfirmed is returned when a destructive bulk operation is
	// attempted without explicit confirmation.
	ErrNotConfirmed = errors.New("destructive operation not confirmed")
	// ErrPersistence wraps store failures so handlers can map them with errors.Is.
	ErrPersistence = errors.New("persistence failure")
)

// CreateInput holds everything needed to run one inspection.
type CreateInput struct {
	UserName string
	Image    models.ImageInput
}

// Stats are the dashboard aggregates computed over the cached list.
type Stats struct {
	TotalScans        int                         `json:"total_scans"`
	AverageConfidence int                         `json:"average_confidence"`
	ActiveAlerts      int                         `json:"active_alerts"`
	SpeciesCounts     map[string]int              `json:"species_counts"`
	HealthCounts      map[models.HealthStatus]int `json:"health_counts"`
}

// Service orchestrates classification and persistence for inspections.
type Service struct {
	classifier models.Classifier
	store      store.Store
	timeout    time.Duration

	mu      sync.Mutex
	records []*models.Inspection
	loading bool
}

// NewService creates a Service with an empty record cache. Call Refresh to
// populate it from the store.
func NewService(classifier models.Classifier, st store.Store, timeout time.Duration) *Service {
	return &Service{
		classifier: classifier,
		store:      st,
		timeout:    timeout,
	}
}

// Refresh replaces the cached list wholesale from the store. On failure the
// previously loaded records are preserved, not cleared: a transient fetch
// error must not make history appear empty.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	records, err := s.store.ListInspections(ctx, "")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.records = records
	return nil
}

// Loading reports whether a Refresh is in flight, distinct from both the
// empty and the populated list states.
func (s *Service) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Records returns a snapshot of the cached list, most recent first.
func (s *Service) Records() []*models.Inspection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Inspection, len(s.records))
	copy(out, s.records)
	return out
}

// Create runs the full inspection flow: classify, persist, then prepend to
// the cache. A failure at either step leaves the cache untouched; no
// partial record is ever added. Two concurrent Creates may both land, each
// producing a valid independent record.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Inspection, error) {
	classifyCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	c, err := s.classifier.Classify(classifyCtx, in.Image)
	if err != nil {
		return nil, err
	}

	mime := in.Image.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}

	saved, err := s.store.InsertInspection(ctx, store.InspectionDraft{
		UserName:             in.UserName,
		ImageURL:             dataURL(mime, in.Image.Data),
		PlantType:            c.PlantType,
		PlantTypeTamil:       c.PlantTypeTamil,
		HealthStatus:         c.HealthStatus,
		ConfidenceScore:      c.ConfidenceScore,
		Description:          c.Description,
		DescriptionTamil:     c.DescriptionTamil,
		Recommendations:      c.Recommendations,
		RecommendationsTamil: c.RecommendationsTamil,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.mu.Lock()
	s.records = append([]*models.Inspection{saved}, s.records...)
	s.mu.Unlock()

	return saved, nil
}

// Delete removes one inspection remotely, then locally on success only.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteInspection(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for idx, r := range s.records {
		if r.ID == id {
			s.records = append(s.records[:idx], s.records[idx+1:]...)
			break
		}
	}
	return nil
}

// ClearAll removes every inspection. It refuses to run without explicit
// confirmation and empties the cache only after the remote delete succeeds.
func (s *Service) ClearAll(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}

	if err := s.store.DeleteAllInspections(ctx, ""); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}

// Stats computes the dashboard aggregates from the cached list.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		SpeciesCounts: make(map[string]int),
		HealthCounts:  make(map[models.HealthStatus]int),
	}
	stats.TotalScans = len(s.records)

	if len(s.records) == 0 {
		return stats
	}

	sum := 0
	for _, r := range s.records {
		sum += r.ConfidenceScore
		stats.SpeciesCounts[r.PlantType]++
		stats.HealthCounts[r.HealthStatus]++
		if r.HealthStatus == models.HealthDiseased {
			stats.ActiveAlerts++
		}
	}
	stats.AverageConfidence = int(math.Round(float64(sum) / float64(len(s.records))))
	return stats
}

// dataURL embeds the raw image inline; images are never uploaded to
// separate blob storage.
func dataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
