// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"fmt"

	"github.com/custodia-labs/dossier/internal/adapters/driven/embedding"
	mistralembed "github.com/custodia-labs/dossier/internal/adapters/driven/embedding/mistral"
	ollamaembed "github.com/custodia-labs/dossier/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/dossier/internal/adapters/driven/embedding/openai"
	mistralllm "github.com/custodia-labs/dossier/internal/adapters/driven/llm/mistral"
	ollamallm "github.com/custodia-labs/dossier/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/dossier/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/logger"
)

// CreateEmbeddingService creates the embedding service for the resolved provider,
// wrapped in a dimension guard for settings.Embedding.Dimensions.
func CreateEmbeddingService(settings domain.Settings) (*embedding.Guard, error) {
	ai := settings.AI
	if !ai.IsConfigured() {
		return nil, fmt.Errorf("%w: %s requires an API key", domain.ErrEmbeddingUnavailable, ai.Provider)
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch ai.Provider {
	case domain.AIProviderOpenAI:
		svc, err = openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     ai.APIKey,
			BaseURL:    ai.BaseURL,
			Model:      ai.EmbeddingModel,
			Dimensions: settings.Embedding.Dimensions,
		})
	case domain.AIProviderMistral:
		svc, err = mistralembed.NewEmbeddingService(mistralembed.Config{
			APIKey:  ai.APIKey,
			BaseURL: ai.BaseURL,
			Model:   ai.EmbeddingModel,
		})
	case domain.AIProviderOllama:
		svc = ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: ai.BaseURL,
			Model:   ai.EmbeddingModel,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", ai.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	if declared := svc.Dimensions(); declared != settings.Embedding.Dimensions {
		logger.Warn("%s/%s declares %d dimensions but the store expects %d; embedding calls will fail",
			ai.Provider, svc.ModelName(), declared, settings.Embedding.Dimensions)
	}

	return embedding.NewGuard(svc, ai.Provider.String(), settings.Embedding.Dimensions), nil
}

// CreateLLMService creates the answer generator for the resolved provider.
func CreateLLMService(settings domain.Settings) (driven.LLMService, error) {
	ai := settings.AI
	if !ai.IsConfigured() {
		return nil, fmt.Errorf("%w: %s requires an API key", domain.ErrLLMUnavailable, ai.Provider)
	}

	var (
		svc driven.LLMService
		err error
	)
	switch ai.Provider {
	case domain.AIProviderOpenAI:
		svc, err = openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  ai.APIKey,
			BaseURL: ai.BaseURL,
			Model:   ai.ChatModel,
		})
	case domain.AIProviderMistral:
		svc, err = mistralllm.NewLLMService(mistralllm.LLMConfig{
			APIKey:  ai.APIKey,
			BaseURL: ai.BaseURL,
			Model:   ai.ChatModel,
		})
	case domain.AIProviderOllama:
		svc = ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: ai.BaseURL,
			Model:   ai.ChatModel,
		})
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", ai.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}
