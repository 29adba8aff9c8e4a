// Package gemini implements models.Classifier against the Google
// Generative Language REST API using an API key and a structured JSON
// response schema.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/agroscan/agroscan/internal/ai/contract"
	"github.com/agroscan/agroscan/internal/config"
	"github.com/agroscan/agroscan/pkg/models"
)

// Provider implements models.Classifier using Gemini.
type Provider struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewProvider creates a Gemini provider. The HTTP client carries no
// timeout of its own; callers bound each Classify with a context deadline.
func NewProvider(cfg config.GeminiConfig) *Provider {
	return &Provider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{},
	}
}

func (p *Provider) Name() string { return "gemini" }

// generateRequest is the JSON body for the generateContent endpoint.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMIMEType string          `json:"responseMimeType"`
	ResponseSchema   contract.Schema `json:"responseSchema"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (p *Provider) Classify(ctx context.Context, img models.ImageInput) (models.Classification, error) {
	mime := img.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{
			Parts: []part{
				{InlineData: &inlineData{
					MIMEType: mime,
					Data:     base64.StdEncoding.EncodeToString(img.Data),
				}},
				{Text: contract.Prompt},
			},
		}},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   contract.ResponseSchema(),
		},
	})
	if err != nil {
		return models.Classification{}, fmt.Errorf("encoding request: %w", err)
	}

	u := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		p.baseURL, url.PathEscape(p.model), url.QueryEscape(p.apiKey))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return models.Classification{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return models.Classification{}, contract.ClassifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Classification{}, fmt.Errorf("%w: status %d", contract.ErrProviderUnavailable, resp.StatusCode)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return models.Classification{}, fmt.Errorf("%w: %v", contract.ErrInvalidResponse, err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return models.Classification{}, fmt.Errorf("%w: no candidates in response", contract.ErrInvalidResponse)
	}

	return contract.Parse([]byte(genResp.Candidates[0].Content.Parts[0].Text))
}

var _ models.Classifier = (*Provider)(nil)
