package ai

import "github.com/agroscan/agroscan/internal/ai/contract"

// Sentinel errors, re-exported from the contract package so callers can
// depend on ai.Err* without importing provider internals.
var (
	ErrProviderUnavailable = contract.ErrProviderUnavailable
	ErrInferenceTimeout    = contract.ErrInferenceTimeout
	ErrInvalidResponse     = contract.ErrInvalidResponse
)
