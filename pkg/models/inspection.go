// Package models contains shared data models used across the AgroScan codebase.
package models

import (
	"time"

	"github.com/google/uuid"
)

// HealthStatus classifies the observed condition of the plants in an image.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "Healthy"
	HealthStressed HealthStatus = "Stressed"
	HealthDiseased HealthStatus = "Diseased"
	HealthUnknown  HealthStatus = "Unknown"
)

// NormalizeHealthStatus maps any value outside the known set to HealthUnknown.
// AI providers occasionally return free-form strings; callers must not let
// those leak past the contract boundary.
func NormalizeHealthStatus(s string) HealthStatus {
	switch HealthStatus(s) {
	case HealthHealthy, HealthStressed, HealthDiseased, HealthUnknown:
		return HealthStatus(s)
	default:
		return HealthUnknown
	}
}

// Inspection is one persisted drone-imagery inspection result. Records are
// immutable once created; the id and created_at come from the store when
// persistence is active, or are generated locally in local-only mode.
type Inspection struct {
	ID                   uuid.UUID    `db:"id"                    json:"id"`
	CreatedAt            time.Time    `db:"created_at"            json:"created_at"`
	UserName             string       `db:"user_name"             json:"user_name"`
	ImageURL             string       `db:"image_url"             json:"image_url"`
	PlantType            string       `db:"plant_type"            json:"plant_type"`
	PlantTypeTamil       string       `db:"plant_type_tamil"      json:"plant_type_tamil"`
	HealthStatus         HealthStatus `db:"health_status"         json:"health_status"`
	ConfidenceScore      int          `db:"confidence_score"      json:"confidence_score"`
	Description          string       `db:"description"           json:"description"`
	DescriptionTamil     string       `db:"description_tamil"     json:"description_tamil"`
	Recommendations      []string     `db:"recommendations"       json:"recommendations"`
	RecommendationsTamil []string     `db:"recommendations_tamil" json:"recommendations_tamil"`
}

// RecommendationPair is one English action item with its Tamil translation.
type RecommendationPair struct {
	English string `json:"english"`
	Tamil   string `json:"tamil"`
}

// PairedRecommendations returns the positionally paired bilingual action
// items. The Tamil sequence is allowed to be shorter or absent; pairs are
// produced only up to the shorter length so callers never index out of
// bounds.
func (i *Inspection) PairedRecommendations() []RecommendationPair {
	n := len(i.Recommendations)
	if len(i.RecommendationsTamil) < n {
		n = len(i.RecommendationsTamil)
	}
	pairs := make([]RecommendationPair, 0, n)
	for idx := 0; idx < n; idx++ {
		pairs = append(pairs, RecommendationPair{
			English: i.Recommendations[idx],
			Tamil:   i.RecommendationsTamil[idx],
		})
	}
	return pairs
}
