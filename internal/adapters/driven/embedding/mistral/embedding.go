// Package mistral provides an embedding service adapter using the Mistral API.
package mistral

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/dossier/internal/adapters/driven/httpapi"
	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const providerName = "mistral"

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.mistral.ai/v1"
	DefaultModel      = "mistral-embed"
	DefaultTimeout    = 60 * time.Second
	DefaultDimensions = 1024
)

// Config holds configuration for the Mistral embedding service.
type Config struct {
	// APIKey is the Mistral API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.mistral.ai/v1).
	BaseURL string

	// Model is the embedding model to use (default: mistral-embed).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// EmbeddingService generates embeddings using the Mistral API.
type EmbeddingService struct {
	api        *httpapi.Client
	model      string
	dimensions int
}

type embeddingRequest struct {
	Model          string   `json:"model"`
	Inputs         []string `json:"input"`
	EncodingFormat string   `json:"encoding_format"`
}

type embeddingResponse struct {
	Data []struct {
		Object    string    `json:"object"`
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
	} `json:"usage"`
}

// NewEmbeddingService creates a new Mistral embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("mistral: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	dims, ok := domain.EmbeddingDimensions()[cfg.Model]
	if !ok {
		dims = DefaultDimensions
	}

	return &EmbeddingService{
		api:        httpapi.New(cfg.BaseURL, cfg.Timeout, httpapi.Bearer(cfg.APIKey)),
		model:      cfg.Model,
		dimensions: dims,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds all texts in one request. Mistral returns one item per input, in order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var resp embeddingResponse
	err := s.api.PostJSON(ctx, "/embeddings", embeddingRequest{
		Model:          s.model,
		Inputs:         texts,
		EncodingFormat: "float",
	}, &resp)
	if err != nil {
		return nil, domain.NewProviderError(providerName, "embed", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, domain.NewProviderError(providerName, "embed",
			fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data)))
	}

	vecs := make([][]float32, len(texts))
	for i, d := range resp.Data {
		idx := d.Index
		if idx < 0 || idx >= len(texts) {
			idx = i
		}
		if len(d.Embedding) == 0 {
			return nil, domain.NewProviderError(providerName, "embed", fmt.Errorf("empty embedding for input %d", idx))
		}
		vecs[idx] = d.Embedding
	}
	return vecs, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the API key by listing models.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if err := s.api.Get(ctx, "/models", nil); err != nil {
		return domain.NewProviderError(providerName, "ping", err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
