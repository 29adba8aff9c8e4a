// Package gate implements the startup readiness check. The gate is
// evaluated exactly once from the loaded configuration and never
// re-evaluated at runtime; fixing a missing credential requires a restart.
package gate

import "github.com/agroscan/agroscan/internal/config"

// Check names for diagnostic output.
const (
	CheckAI    = "ai_provider"
	CheckStore = "database"
)

// Status is the result of the one-time startup evaluation.
type Status struct {
	AIConfigured    bool `json:"ai_configured"`
	StoreConfigured bool `json:"store_configured"`
	// LocalOnly is true when the store is absent but the operator opted
	// into in-memory persistence for the session.
	LocalOnly bool `json:"local_only"`
}

// Evaluate derives the gate status from config. Called once at startup.
func Evaluate(cfg *config.Config) Status {
	s := Status{
		AIConfigured:    cfg.AIConfigured(),
		StoreConfigured: cfg.StoreConfigured(),
	}
	if !s.StoreConfigured && cfg.Server.LocalOnly {
		s.LocalOnly = true
	}
	return s
}

// Ready reports whether normal (or local-only) operation may proceed.
// When false, protected routes must answer with a configuration diagnostic
// and neither collaborator may be called.
func (s Status) Ready() bool {
	if !s.AIConfigured {
		return false
	}
	return s.StoreConfigured || s.LocalOnly
}

// FailedChecks lists the collaborators whose configuration is missing.
func (s Status) FailedChecks() []string {
	var failed []string
	if !s.AIConfigured {
		failed = append(failed, CheckAI)
	}
	if !s.StoreConfigured && !s.LocalOnly {
		failed = append(failed, CheckStore)
	}
	return failed
}
