package inspection_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agroscan/agroscan/internal/ai"
	"github.com/agroscan/agroscan/internal/ai/mock"
	"github.com/agroscan/agroscan/internal/inspection"
	"github.com/agroscan/agroscan/internal/store"
	"github.com/agroscan/agroscan/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore wraps a MemoryStore with injectable failures.
type flakyStore struct {
	*store.MemoryStore
	insertErr    error
	listErr      error
	deleteErr    error
	deleteAllErr error
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: store.NewMemoryStore()}
}

func (s *flakyStore) InsertInspection(ctx context.Context, d store.InspectionDraft) (*models.Inspection, error) {
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	return s.MemoryStore.InsertInspection(ctx, d)
}

func (s *flakyStore) ListInspections(ctx context.Context, user string) ([]*models.Inspection, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.MemoryStore.ListInspections(ctx, user)
}

func (s *flakyStore) DeleteInspection(ctx context.Context, id uuid.UUID) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.MemoryStore.DeleteInspection(ctx, id)
}

func (s *flakyStore) DeleteAllInspections(ctx context.Context, user string) error {
	if s.deleteAllErr != nil {
		return s.deleteAllErr
	}
	return s.MemoryStore.DeleteAllInspections(ctx, user)
}

func newService(st store.Store) *inspection.Service {
	return inspection.NewService(mock.NewProvider(), st, time.Second)
}

func createInput() inspection.CreateInput {
	return inspection.CreateInput{
		UserName: "farmer",
		Image:    models.ImageInput{Data: []byte("img"), MIMEType: "image/jpeg"},
	}
}

func TestCreate_PrependsRecord(t *testing.T) {
	svc := newService(newFlakyStore())
	ctx := context.Background()

	first, err := svc.Create(ctx, createInput())
	require.NoError(t, err)
	second, err := svc.Create(ctx, createInput())
	require.NoError(t, err)

	records := svc.Records()
	require.Len(t, records, 2)
	assert.Equal(t, second.ID, records[0].ID)
	assert.Equal(t, first.ID, records[1].ID)
}

func TestCreate_EmbedsImageAsDataURL(t *testing.T) {
	svc := newService(newFlakyStore())

	got, err := svc.Create(context.Background(), createInput())
	require.NoError(t, err)
	assert.Contains(t, got.ImageURL, "data:image/jpeg;base64,")
}

func TestCreate_ClassificationFailureLeavesRecordsUnchanged(t *testing.T) {
	st := newFlakyStore()
	svc := inspection.NewService(
		mock.NewFailingProvider(ai.ErrProviderUnavailable), st, time.Second)

	_, err := svc.Create(context.Background(), createInput())
	assert.ErrorIs(t, err, ai.ErrProviderUnavailable)
	assert.Empty(t, svc.Records())

	// Nothing persisted either: no partial record anywhere.
	rows, err := st.MemoryStore.ListInspections(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCreate_PersistenceFailureLeavesRecordsUnchanged(t *testing.T) {
	st := newFlakyStore()
	st.insertErr = errors.New("write rejected")
	svc := newService(st)

	_, err := svc.Create(context.Background(), createInput())
	assert.ErrorIs(t, err, inspection.ErrPersistence)
	assert.Empty(t, svc.Records())
}

func TestCreate_InferenceTimeout(t *testing.T) {
	svc := inspection.NewService(mock.NewTimeoutProvider(), newFlakyStore(), 20*time.Millisecond)

	_, err := svc.Create(context.Background(), createInput())
	assert.ErrorIs(t, err, ai.ErrInferenceTimeout)
	assert.Empty(t, svc.Records())
}

func TestCreateThenDelete_RoundTripRestoresPriorState(t *testing.T) {
	svc := newService(newFlakyStore())
	ctx := context.Background()

	existing, err := svc.Create(ctx, createInput())
	require.NoError(t, err)
	before := svc.Records()

	created, err := svc.Create(ctx, createInput())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID))

	after := svc.Records()
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID)
	}
	assert.Equal(t, existing.ID, after[0].ID)
}

func TestDelete_FailureLeavesRecordsUnchanged(t *testing.T) {
	st := newFlakyStore()
	svc := newService(st)
	ctx := context.Background()

	created, err := svc.Create(ctx, createInput())
	require.NoError(t, err)

	st.deleteErr = errors.New("store unreachable")
	err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, inspection.ErrPersistence)
	require.Len(t, svc.Records(), 1)
}

func TestClearAll_RequiresConfirmation(t *testing.T) {
	st := newFlakyStore()
	svc := newService(st)
	ctx := context.Background()

	_, err := svc.Create(ctx, createInput())
	require.NoError(t, err)

	err = svc.ClearAll(ctx, false)
	assert.ErrorIs(t, err, inspection.ErrNotConfirmed)
	require.Len(t, svc.Records(), 1)

	// Remote store untouched without confirmation.
	rows, err := st.MemoryStore.ListInspections(ctx, "")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestClearAll_Confirmed(t *testing.T) {
	svc := newService(newFlakyStore())
	ctx := context.Background()

	_, err := svc.Create(ctx, createInput())
	require.NoError(t, err)

	require.NoError(t, svc.ClearAll(ctx, true))
	assert.Empty(t, svc.Records())
}

func TestClearAll_FailureLeavesRecordsUnchanged(t *testing.T) {
	st := newFlakyStore()
	svc := newService(st)
	ctx := context.Background()

	_, err := svc.Create(ctx, createInput())
	require.NoError(t, err)

	st.deleteAllErr = errors.New("store unreachable")
	err = svc.ClearAll(ctx, true)
	assert.ErrorIs(t, err, inspection.ErrPersistence)
	require.Len(t, svc.Records(), 1)
}

func TestRefresh_LoadsMostRecentFirst(t *testing.T) {
	st := newFlakyStore()
	ctx := context.Background()

	// Seed the store directly, as if written by another device.
	_, err := st.MemoryStore.InsertInspection(ctx, store.InspectionDraft{
		UserName: "farmer", PlantType: "Rice", PlantTypeTamil: "நெல்",
		HealthStatus: models.HealthStressed, ConfidenceScore: 70,
	})
	require.NoError(t, err)
	_, err = st.MemoryStore.InsertInspection(ctx, store.InspectionDraft{
		UserName: "farmer", PlantType: "Coconut Palm", PlantTypeTamil: "தென்னை",
		HealthStatus: models.HealthHealthy, ConfidenceScore: 98,
	})
	require.NoError(t, err)

	svc := newService(st)
	require.NoError(t, svc.Refresh(ctx))

	records := svc.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "Coconut Palm", records[0].PlantType)
	assert.Equal(t, "Rice", records[1].PlantType)
	assert.False(t, svc.Loading())
}

func TestRefresh_FailurePreservesPriorRecords(t *testing.T) {
	st := newFlakyStore()
	svc := newService(st)
	ctx := context.Background()

	_, err := svc.Create(ctx, createInput())
	require.NoError(t, err)

	st.listErr = errors.New("store unreachable")
	err = svc.Refresh(ctx)
	assert.ErrorIs(t, err, inspection.ErrPersistence)
	assert.Len(t, svc.Records(), 1, "fetch failure must not clear loaded history")
	assert.False(t, svc.Loading())
}

func TestStats_Aggregates(t *testing.T) {
	st := newFlakyStore()
	ctx := context.Background()

	seed := []struct {
		plant  string
		health models.HealthStatus
		score  int
	}{
		{"Coconut Palm", models.HealthHealthy, 98},
		{"Rice", models.HealthDiseased, 72},
		{"Rice", models.HealthDiseased, 85},
	}
	for _, s := range seed {
		_, err := st.MemoryStore.InsertInspection(ctx, store.InspectionDraft{
			UserName: "farmer", PlantType: s.plant, PlantTypeTamil: "x",
			HealthStatus: s.health, ConfidenceScore: s.score,
		})
		require.NoError(t, err)
	}

	svc := newService(st)
	require.NoError(t, svc.Refresh(ctx))

	stats := svc.Stats()
	assert.Equal(t, 3, stats.TotalScans)
	assert.Equal(t, 85, stats.AverageConfidence, "round((98+72+85)/3)")
	assert.Equal(t, 2, stats.ActiveAlerts)
	assert.Equal(t, 2, stats.SpeciesCounts["Rice"])
	assert.Equal(t, 1, stats.SpeciesCounts["Coconut Palm"])
	assert.Equal(t, 2, stats.HealthCounts[models.HealthDiseased])
	assert.Equal(t, 1, stats.HealthCounts[models.HealthHealthy])
}

func TestStats_Empty(t *testing.T) {
	svc := newService(newFlakyStore())

	stats := svc.Stats()
	assert.Equal(t, 0, stats.TotalScans)
	assert.Equal(t, 0, stats.AverageConfidence)
	assert.Equal(t, 0, stats.ActiveAlerts)
}

func TestRecords_OrderingNonIncreasingAfterMixedOperations(t *testing.T) {
	st := newFlakyStore()
	svc := newService(st)
	ctx := context.Background()

	_, err := svc.Create(ctx, createInput())
	require.NoError(t, err)
	require.NoError(t, svc.Refresh(ctx))
	_, err = svc.Create(ctx, createInput())
	require.NoError(t, err)

	records := svc.Records()
	for i := 1; i < len(records); i++ {
		assert.False(t, records[i-1].CreatedAt.Before(records[i].CreatedAt),
			"records must be non-increasing by creation time")
	}
}

func TestPairedRecommendations_ShorterTamilSequence(t *testing.T) {
	provider := &mock.Provider{
		Name_: "mock",
		ClassifyFunc: func(_ context.Context, _ models.ImageInput) (models.Classification, error) {
			return models.Classification{
				PlantType:            "Rice",
				PlantTypeTamil:       "நெல்",
				HealthStatus:         models.HealthStressed,
				ConfidenceScore:      70,
				Recommendations:      []string{"a", "b", "c"},
				RecommendationsTamil: []string{"அ"},
			}, nil
		},
	}
	svc := inspection.NewService(provider, newFlakyStore(), time.Second)

	created, err := svc.Create(context.Background(), createInput())
	require.NoError(t, err)

	pairs := created.PairedRecommendations()
	require.Len(t, pairs, 1)
	assert.Equal(t, "a", pairs[0].English)
	assert.Equal(t, "அ", pairs[0].Tamil)
}
