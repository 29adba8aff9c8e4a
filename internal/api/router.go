package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/agroscan/agroscan/internal/api/middleware"
	"github.com/agroscan/agroscan/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit
	Gate      *mw.Gate

	HealthHandler http.HandlerFunc
	LoginHandler  http.HandlerFunc
	LogoutHandler http.HandlerFunc
	MeHandler     http.HandlerFunc

	CreateInspectionHandler http.HandlerFunc
	ListInspectionsHandler  http.HandlerFunc
	DeleteInspectionHandler http.HandlerFunc
	ClearInspectionsHandler http.HandlerFunc
	StatsHandler            http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public routes: health and login work even when the gate is closed,
	// so an operator can see what is misconfigured.
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	r.Post("/api/v1/login", orNotImplemented(deps.LoginHandler))

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Post("/api/v1/logout", orNotImplemented(deps.LogoutHandler))
		r.Get("/api/v1/me", orNotImplemented(deps.MeHandler))

		// Inspection routes additionally sit behind the configuration
		// gate: no classifier or store call happens until both exist.
		r.Group(func(r chi.Router) {
			r.Use(deps.Gate.Require)

			r.Post("/api/v1/inspections", orNotImplemented(deps.CreateInspectionHandler))
			r.Get("/api/v1/inspections", orNotImplemented(deps.ListInspectionsHandler))
			r.Delete("/api/v1/inspections/{inspectionID}", orNotImplemented(deps.DeleteInspectionHandler))
			r.Delete("/api/v1/inspections", orNotImplemented(deps.ClearInspectionsHandler))

			r.Get("/api/v1/stats", orNotImplemented(deps.StatsHandler))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
