// Package mistral provides an answer-generation adapter using the Mistral chat API.
package mistral

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/dossier/internal/adapters/driven/httpapi"
	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

const providerName = "mistral"

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.mistral.ai/v1"
	DefaultLLMModel   = "mistral-small-latest"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig holds configuration for the Mistral LLM service.
type LLMConfig struct {
	// APIKey is the Mistral API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.mistral.ai/v1).
	BaseURL string

	// Model is the chat model to use (default: mistral-small-latest).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService generates answers using the Mistral API.
type LLMService struct {
	api   *httpapi.Client
	model string
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			// Content is either a string or an array of typed segments.
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// contentSegment is one element of an array-valued message content.
type contentSegment struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewLLMService creates a new Mistral LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("mistral: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		api:   httpapi.New(cfg.BaseURL, cfg.Timeout, httpapi.Bearer(cfg.APIKey)),
		model: cfg.Model,
	}, nil
}

// Chat sends the conversation and returns the first choice's text.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	req := chatRequest{
		Model:       s.model,
		Messages:    make([]chatMessage, 0, len(messages)),
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	var resp chatResponse
	if err := s.api.PostJSON(ctx, "/chat/completions", req, &resp); err != nil {
		return "", domain.NewProviderError(providerName, "chat", err)
	}

	if len(resp.Choices) == 0 {
		return "", domain.NewProviderError(providerName, "chat", errors.New("no choices in response"))
	}

	text, err := flattenContent(resp.Choices[0].Message.Content)
	if err != nil {
		return "", domain.NewProviderError(providerName, "chat", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.NewProviderError(providerName, "chat", errors.New("no content in response"))
	}
	return text, nil
}

// flattenContent returns string content as-is and concatenates the text
// segments of array content, skipping every other segment type.
func flattenContent(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var segments []contentSegment
	if err := json.Unmarshal(raw, &segments); err != nil {
		return "", fmt.Errorf("decode message content: %w", err)
	}
	var b strings.Builder
	for _, seg := range segments {
		if seg.Type == "text" {
			b.WriteString(seg.Text)
		}
	}
	return b.String(), nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key by listing models.
func (s *LLMService) Ping(ctx context.Context) error {
	if err := s.api.Get(ctx, "/models", nil); err != nil {
		return domain.NewProviderError(providerName, "ping", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
