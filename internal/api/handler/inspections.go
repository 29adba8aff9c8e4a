package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/agroscan/agroscan/internal/ai"
	mw "github.com/agroscan/agroscan/internal/api/middleware"
	"github.com/agroscan/agroscan/internal/api/response"
	"github.com/agroscan/agroscan/internal/inspection"
	"github.com/agroscan/agroscan/pkg/models"
)

// maxImageBytes caps decoded upload size. Drone stills are a few MB; anything
// larger is almost certainly a bad upload.
const maxImageBytes = 10 << 20

// InspectionService defines the controller operations the handlers depend on.
type InspectionService interface {
	Create(ctx context.Context, in inspection.CreateInput) (*models.Inspection, error)
	Refresh(ctx context.Context) error
	Records() []*models.Inspection
	Delete(ctx context.Context, id uuid.UUID) error
	ClearAll(ctx context.Context, confirmed bool) error
	Stats() inspection.Stats
}

// NewCreateInspectionHandler returns an http.HandlerFunc for
// POST /api/v1/inspections. The image arrives as base64 (raw or data URL)
// and the new record is returned fully populated.
func NewCreateInspectionHandler(svc InspectionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userName, ok := mw.GetUserName(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing session", nil)
			return
		}

		var req struct {
			Image    string `json:"image"`
			MIMEType string `json:"mime_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Image == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "image is required", nil)
			return
		}

		img, err := decodeImage(req.Image, req.MIMEType)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			return
		}

		saved, err := svc.Create(r.Context(), inspection.CreateInput{
			UserName: userName,
			Image:    img,
		})
		if err != nil {
			writeInspectionError(w, err)
			return
		}

		response.Created(w, saved)
	}
}

// NewListInspectionsHandler returns an http.HandlerFunc for
// GET /api/v1/inspections. The list is refetched from the store on every
// call; if the fetch fails the previously cached records are served with a
// stale marker rather than an empty list.
func NewListInspectionsHandler(svc InspectionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stale := false
		if err := svc.Refresh(r.Context()); err != nil {
			stale = true
		}

		records := svc.Records()
		response.JSON(w, map[string]any{
			"inspections": records,
			"count":       len(records),
			"stale":       stale,
		})
	}
}

// NewDeleteInspectionHandler returns an http.HandlerFunc for
// DELETE /api/v1/inspections/{inspectionID}. Deleting an absent record
// succeeds; the end state is identical either way.
func NewDeleteInspectionHandler(svc InspectionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "inspectionID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "inspectionID must be a valid UUID", nil)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			writeInspectionError(w, err)
			return
		}

		response.JSON(w, map[string]string{"deleted": id.String()})
	}
}

// NewClearInspectionsHandler returns an http.HandlerFunc for
// DELETE /api/v1/inspections. Requires confirm=true; history wipes must
// never happen by accident.
func NewClearInspectionsHandler(svc InspectionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		confirmed := r.URL.Query().Get("confirm") == "true"

		err := svc.ClearAll(r.Context(), confirmed)
		if errors.Is(err, inspection.ErrNotConfirmed) {
			response.Error(w, http.StatusBadRequest, "CONFIRMATION_REQUIRED",
				"Pass confirm=true to delete all inspections", nil)
			return
		}
		if err != nil {
			writeInspectionError(w, err)
			return
		}

		response.JSON(w, map[string]bool{"cleared": true})
	}
}

// NewStatsHandler returns an http.HandlerFunc for GET /api/v1/stats.
func NewStatsHandler(svc InspectionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, svc.Stats())
	}
}

func writeInspectionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ai.ErrInferenceTimeout):
		response.Error(w, http.StatusGatewayTimeout, "AI_INFERENCE_TIMEOUT",
			"The AI provider did not respond in time", nil)
	case errors.Is(err, ai.ErrProviderUnavailable):
		response.Error(w, http.StatusBadGateway, "AI_PROVIDER_UNAVAILABLE",
			"The AI provider is not available", nil)
	case errors.Is(err, ai.ErrInvalidResponse):
		response.Error(w, http.StatusBadGateway, "CLASSIFICATION_FAILED",
			"The AI provider returned an unusable classification", nil)
	case errors.Is(err, inspection.ErrPersistence):
		response.Error(w, http.StatusBadGateway, "PERSISTENCE_FAILED",
			"Failed to persist the change", nil)
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}

// decodeImage accepts either a bare base64 string or a data URL and returns
// the raw bytes plus the resolved MIME type. An explicit mime_type field
// wins over the data URL's.
func decodeImage(encoded, mimeType string) (models.ImageInput, error) {
	if strings.HasPrefix(encoded, "data:") {
		rest := strings.TrimPrefix(encoded, "data:")
		meta, payload, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(meta, ";base64") {
			return models.ImageInput{}, fmt.Errorf("image data URL must be base64 encoded")
		}
		if mimeType == "" {
			mimeType = strings.TrimSuffix(meta, ";base64")
		}
		encoded = payload
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return models.ImageInput{}, fmt.Errorf("image is not valid base64")
	}
	if len(data) == 0 {
		return models.ImageInput{}, fmt.Errorf("image is empty")
	}
	if len(data) > maxImageBytes {
		return models.ImageInput{}, fmt.Errorf("image exceeds the %d byte limit", maxImageBytes)
	}

	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	return models.ImageInput{Data: data, MIMEType: mimeType}, nil
}
