package models

import "context"

// Classifier is the core interface that all AI integrations must implement.
// Never call specific AI providers directly — always inject this interface.
type Classifier interface {
	// Classify identifies the plant species and health condition visible in
	// a drone image and returns the bilingual classification.
	Classify(ctx context.Context, img ImageInput) (Classification, error)
	// Name returns the provider identifier (e.g., "gemini", "ollama").
	Name() string
}

// ImageInput is the raw image payload sent to a classifier. No size or
// dimension validation happens here; the provider enforces its own limits.
type ImageInput struct {
	Data     []byte
	MIMEType string
}

// Classification is the bilingual output of a single classify call. All
// eight fields are required by the response schema; providers must fail the
// whole call rather than return a partially populated value.
type Classification struct {
	PlantType            string       `json:"plant_type"`
	PlantTypeTamil       string       `json:"plant_type_tamil"`
	HealthStatus         HealthStatus `json:"health_status"`
	ConfidenceScore      int          `json:"confidence_score"`
	Description          string       `json:"description"`
	DescriptionTamil     string       `json:"description_tamil"`
	Recommendations      []string     `json:"recommendations"`
	RecommendationsTamil []string     `json:"recommendations_tamil"`
}
