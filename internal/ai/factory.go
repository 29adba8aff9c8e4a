// Package ai selects and constructs the classifier provider.
package ai

import (
	"fmt"

	"github.com/agroscan/agroscan/internal/ai/gemini"
	"github.com/agroscan/agroscan/internal/ai/mock"
	"github.com/agroscan/agroscan/internal/ai/ollama"
	"github.com/agroscan/agroscan/internal/config"
	"github.com/agroscan/agroscan/pkg/models"
)

// NewClassifier constructs the appropriate classifier based on config.
// Called once at server startup.
func NewClassifier(cfg config.AIConfig) (models.Classifier, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.NewProvider(cfg.Gemini), nil
	case "ollama":
		return ollama.NewProvider(cfg.Ollama), nil
	case "mock":
		return mock.NewProvider(), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of gemini, ollama, mock", cfg.Provider)
	}
}
