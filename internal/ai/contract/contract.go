// Package contract defines the fixed request/response schema shared by all
// classifier providers: the prompt, the structured-output JSON schema, and
// the validation that turns a raw model response into a Classification.
package contract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"strings"

	"github.com/agroscan/agroscan/pkg/models"
)

// Sentinel errors for classifier failures. Providers wrap these so handlers
// can map them to stable error codes with errors.Is.
var (
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	ErrInferenceTimeout    = errors.New("ai inference timeout")
	ErrInvalidResponse     = errors.New("ai provider returned invalid response")
)

// Prompt is the instruction sent alongside the image. The original field
// study runs in Tamil Nadu, hence the bilingual output requirement.
const Prompt = `Identify the plant or tree types in this drone/aerial agricultural image. ` +
	`Provide the results in both English and Tamil. ` +
	`The health status should be one of: Healthy, Stressed, Diseased.`

// Schema describes the expected JSON output structure for structured
// responses. Both Gemini's responseSchema and Ollama's format field accept
// this shape.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes a single field within a Schema.
type Property struct {
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Items       *Property `json:"items,omitempty"`
}

// requiredFields lists every key the model must populate. A response
// missing any of them fails the whole call.
var requiredFields = []string{
	"plantType", "plantTypeTamil", "healthStatus", "confidenceScore",
	"description", "descriptionTamil", "recommendations", "recommendationsTamil",
}

// ResponseSchema returns the eight-field classification schema.
func ResponseSchema() Schema {
	return Schema{
		Type: "object",
		Properties: map[string]Property{
			"plantType":       {Type: "string", Description: "Common name in English"},
			"plantTypeTamil":  {Type: "string", Description: "Common name in Tamil"},
			"healthStatus":    {Type: "string", Description: "Status: Healthy, Stressed, or Diseased"},
			"confidenceScore": {Type: "number", Description: "Numerical confidence 0 to 100"},
			"description":     {Type: "string", Description: "Visual summary in English"},
			"descriptionTamil": {
				Type: "string", Description: "Visual summary in Tamil",
			},
			"recommendations": {
				Type:        "array",
				Description: "Actionable steps in English",
				Items:       &Property{Type: "string"},
			},
			"recommendationsTamil": {
				Type:        "array",
				Description: "Actionable steps in Tamil",
				Items:       &Property{Type: "string"},
			},
		},
		Required: requiredFields,
	}
}

// wireClassification mirrors the JSON keys the model is asked to emit.
type wireClassification struct {
	PlantType            string   `json:"plantType"`
	PlantTypeTamil       string   `json:"plantTypeTamil"`
	HealthStatus         string   `json:"healthStatus"`
	ConfidenceScore      float64  `json:"confidenceScore"`
	Description          string   `json:"description"`
	DescriptionTamil     string   `json:"descriptionTamil"`
	Recommendations      []string `json:"recommendations"`
	RecommendationsTamil []string `json:"recommendationsTamil"`
}

// Parse validates a raw model response against the classification schema
// and normalizes it. Any missing required field, malformed JSON, or empty
// bilingual name fails the whole call with ErrInvalidResponse; nothing is
// partially accepted.
func Parse(raw []byte) (models.Classification, error) {
	text := strings.TrimSpace(string(raw))
	// Some models wrap structured output in a markdown fence despite being
	// asked for raw JSON.
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var rawMap map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &rawMap); err != nil {
		return models.Classification{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	for _, field := range requiredFields {
		if _, ok := rawMap[field]; !ok {
			return models.Classification{}, fmt.Errorf("%w: missing required field %q", ErrInvalidResponse, field)
		}
	}

	var wire wireClassification
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		return models.Classification{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if wire.PlantType == "" || wire.PlantTypeTamil == "" {
		return models.Classification{}, fmt.Errorf("%w: plant type must be non-empty in both languages", ErrInvalidResponse)
	}

	score := int(math.Round(wire.ConfidenceScore))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	c := models.Classification{
		PlantType:            wire.PlantType,
		PlantTypeTamil:       wire.PlantTypeTamil,
		HealthStatus:         models.NormalizeHealthStatus(wire.HealthStatus),
		ConfidenceScore:      score,
		Description:          wire.Description,
		DescriptionTamil:     wire.DescriptionTamil,
		Recommendations:      wire.Recommendations,
		RecommendationsTamil: wire.RecommendationsTamil,
	}
	if c.Recommendations == nil {
		c.Recommendations = []string{}
	}
	if c.RecommendationsTamil == nil {
		c.RecommendationsTamil = []string{}
	}
	return c, nil
}

// ClassifyTransportError maps transport-level errors to sentinel errors.
func ClassifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
}
