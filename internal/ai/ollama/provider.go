// Package ollama implements models.Classifier against a local Ollama
// instance running a multimodal model (llava, bakllava, etc.).
package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/agroscan/agroscan/internal/ai/contract"
	"github.com/agroscan/agroscan/internal/config"
	"github.com/agroscan/agroscan/pkg/models"
)

// Provider implements models.Classifier using Ollama.
type Provider struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewProvider(cfg config.OllamaConfig) *Provider {
	return &Provider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		client:  &http.Client{},
	}
}

func (p *Provider) Name() string { return "ollama" }

// chatRequest is the JSON body for POST /api/chat.
type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
	Format   any       `json:"format,omitempty"`
}

type message struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

// chatResponse is the JSON returned by POST /api/chat (non-streaming).
type chatResponse struct {
	Message message `json:"message"`
}

func (p *Provider) Classify(ctx context.Context, img models.ImageInput) (models.Classification, error) {
	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []message{{
			Role:    "user",
			Content: contract.Prompt,
			Images:  []string{base64.StdEncoding.EncodeToString(img.Data)},
		}},
		Stream: false,
		Format: contract.ResponseSchema(),
	})
	if err != nil {
		return models.Classification{}, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return models.Classification{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return models.Classification{}, contract.ClassifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Classification{}, fmt.Errorf("%w: status %d", contract.ErrProviderUnavailable, resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return models.Classification{}, fmt.Errorf("%w: %v", contract.ErrInvalidResponse, err)
	}

	return contract.Parse([]byte(chatResp.Message.Content))
}

var _ models.Classifier = (*Provider)(nil)
