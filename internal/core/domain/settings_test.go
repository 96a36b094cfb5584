package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveProvider(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected AIProvider
		fellBack bool
	}{
		{"openai", "openai", AIProviderOpenAI, false},
		{"mistral", "mistral", AIProviderMistral, false},
		{"ollama", "ollama", AIProviderOllama, false},
		{"mixed case", "OpenAI", AIProviderOpenAI, false},
		{"padded", "  mistral ", AIProviderMistral, false},
		{"empty", "", AIProviderMistral, true},
		{"unknown", "anthropic", AIProviderMistral, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, fellBack := ResolveProvider(tt.input)
			assert.Equal(t, tt.expected, provider)
			assert.Equal(t, tt.fellBack, fellBack)
		})
	}
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderMistral.RequiresAPIKey())
	assert.False(t, AIProviderOllama.RequiresAPIKey())
}

func TestAIProvider_Description(t *testing.T) {
	assert.Equal(t, "OpenAI (cloud)", AIProviderOpenAI.Description())
	assert.Equal(t, "Mistral (cloud)", AIProviderMistral.Description())
	assert.Equal(t, "Ollama (local)", AIProviderOllama.Description())
	assert.Equal(t, "Unknown", AIProvider("x").Description())
}

func TestAISettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings AISettings
		expected bool
	}{
		{"invalid provider", AISettings{Provider: "x"}, false},
		{"openai without key", AISettings{Provider: AIProviderOpenAI}, false},
		{"openai with key", AISettings{Provider: AIProviderOpenAI, APIKey: "sk"}, true},
		{"mistral without key", AISettings{Provider: AIProviderMistral}, false},
		{"ollama without key", AISettings{Provider: AIProviderOllama}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, AIProviderMistral, s.AI.Provider)
	assert.Equal(t, "mistral-embed", s.AI.EmbeddingModel)
	assert.Equal(t, "mistral-small-latest", s.AI.ChatModel)
	assert.Equal(t, 0.3, s.AI.Temperature)
	assert.Equal(t, 1000, s.AI.MaxTokens)
	assert.Equal(t, 1024, s.Embedding.Dimensions)
	assert.Equal(t, 0.5, s.Search.Threshold)
	assert.Equal(t, 10, s.Search.TopK)
	assert.Equal(t, 1000, s.Chunking.Size)
	assert.Equal(t, 200, s.Chunking.Overlap)
	assert.Equal(t, StorageSQLite, s.Storage.Driver)
	assert.Equal(t, 3001, s.Server.Port)
	assert.Equal(t, "amasad", s.Corpus.Owner)
	assert.Equal(t, "jfk_files", s.Corpus.Repo)
	assert.Equal(t, "main", s.Corpus.Branch)
}

func TestEmbeddingDimensions_ProviderDefaults(t *testing.T) {
	dims := EmbeddingDimensions()
	for provider, model := range DefaultEmbeddingModels() {
		_, ok := dims[model]
		assert.True(t, ok, "default model for %s should have known dimensions", provider)
	}
	assert.Equal(t, 1536, dims["text-embedding-ada-002"])
	assert.Equal(t, 1024, dims["mistral-embed"])
}

func TestStorageDriver_IsValid(t *testing.T) {
	assert.True(t, StorageSQLite.IsValid())
	assert.True(t, StoragePostgres.IsValid())
	assert.False(t, StorageDriver("mysql").IsValid())
}
