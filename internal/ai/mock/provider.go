// Package mock provides a configurable Classifier test double.
package mock

import (
	"context"

	"github.com/agroscan/agroscan/internal/ai/contract"
	"github.com/agroscan/agroscan/pkg/models"
)

// Provider satisfies models.Classifier for testing and demo mode.
type Provider struct {
	Name_        string
	ClassifyFunc func(ctx context.Context, img models.ImageInput) (models.Classification, error)
}

func (m *Provider) Name() string { return m.Name_ }

func (m *Provider) Classify(ctx context.Context, img models.ImageInput) (models.Classification, error) {
	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, img)
	}
	return models.Classification{}, nil
}

// NewProvider returns a Provider with a sensible default classification.
func NewProvider() *Provider {
	return &Provider{
		Name_: "mock",
		ClassifyFunc: func(_ context.Context, _ models.ImageInput) (models.Classification, error) {
			return models.Classification{
				PlantType:            "Coconut Palm",
				PlantTypeTamil:       "தென்னை",
				HealthStatus:         models.HealthHealthy,
				ConfidenceScore:      95,
				Description:          "Simulated classification from mock provider",
				DescriptionTamil:     "மாதிரி வகைப்பாடு",
				Recommendations:      []string{"Maintain current irrigation schedule"},
				RecommendationsTamil: []string{"தற்போதைய நீர்ப்பாசனத்தை தொடரவும்"},
			}, nil
		},
	}
}

// NewFailingProvider returns a Provider that always returns the given error.
func NewFailingProvider(err error) *Provider {
	return &Provider{
		Name_: "mock-failing",
		ClassifyFunc: func(_ context.Context, _ models.ImageInput) (models.Classification, error) {
			return models.Classification{}, err
		},
	}
}

// NewTimeoutProvider returns a Provider that blocks until context is cancelled.
func NewTimeoutProvider() *Provider {
	return &Provider{
		Name_: "mock-timeout",
		ClassifyFunc: func(ctx context.Context, _ models.ImageInput) (models.Classification, error) {
			<-ctx.Done()
			return models.Classification{}, contract.ErrInferenceTimeout
		},
	}
}

// Compile-time check that Provider implements Classifier.
var _ models.Classifier = (*Provider)(nil)
