// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations include:
//   - OpenAI (text-embedding-ada-002, 1536 dimensions)
//   - Mistral (mistral-embed, 1024 dimensions)
//   - Ollama (mxbai-embed-large, nomic-embed-text)
//
// Failures are reported as *domain.ProviderError.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one request where supported.
	// The result is ordered like texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the native vector size declared for the model.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
