package middleware

import (
	"net/http"

	"github.com/agroscan/agroscan/internal/api/response"
	"github.com/agroscan/agroscan/internal/gate"
)

// Gate blocks protected routes when the startup configuration check
// failed. The diagnostic names which checks failed; recovery requires a
// restart, so there is no retry beyond the client reloading.
type Gate struct {
	status gate.Status
}

// NewGate creates gate middleware from the startup evaluation.
func NewGate(status gate.Status) *Gate {
	return &Gate{status: status}
}

// Require answers 503 with the failed checks when the gate is not ready.
// Handlers behind it can assume both collaborators are wired.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.status.Ready() {
			response.Error(w, http.StatusServiceUnavailable,
				"CONFIGURATION_MISSING", "Server configuration is incomplete",
				map[string]any{"failed_checks": g.status.FailedChecks()})
			return
		}
		next.ServeHTTP(w, r)
	})
}
