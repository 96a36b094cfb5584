package domain

import "strings"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings and answer generation.
// One provider serves both roles so that query and corpus vectors share a space.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderMistral is Mistral cloud API.
	AIProviderMistral AIProvider = "mistral"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"
)

// DefaultAIProvider is used when the configured provider is empty or unrecognised.
const DefaultAIProvider = AIProviderMistral

// ResolveProvider maps a configuration value to a provider.
// Unrecognised values resolve to DefaultAIProvider and report fellBack=true.
// This is the only place provider names are interpreted.
func ResolveProvider(name string) (provider AIProvider, fellBack bool) {
	p := AIProvider(strings.ToLower(strings.TrimSpace(name)))
	if p.IsValid() {
		return p, false
	}
	return DefaultAIProvider, true
}

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderMistral, AIProviderOllama:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderMistral
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderMistral:
		return "Mistral (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	default:
		return unknownDescription
	}
}

// AllAIProviders returns every supported provider.
func AllAIProviders() []AIProvider {
	return []AIProvider{AIProviderOpenAI, AIProviderMistral, AIProviderOllama}
}

// DefaultEmbeddingModels returns default embedding models for each provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOpenAI:  "text-embedding-ada-002",
		AIProviderMistral: "mistral-embed",
		AIProviderOllama:  "mxbai-embed-large",
	}
}

// DefaultChatModels returns default answer-generation models for each provider.
func DefaultChatModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOpenAI:  "gpt-4-turbo-preview",
		AIProviderMistral: "mistral-small-latest",
		AIProviderOllama:  "llama3.2",
	}
}

// EmbeddingDimensions returns the native vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// OpenAI models
		"text-embedding-ada-002": 1536,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		// Mistral models
		"mistral-embed": 1024,
		// Ollama models
		"mxbai-embed-large": 1024,
		"nomic-embed-text":  768,
		"all-minilm":        384,
	}
}

// StorageDriver selects the corpus store backend.
type StorageDriver string

// Available storage drivers.
const (
	// StorageSQLite is an embedded SQLite database with in-process cosine scoring.
	StorageSQLite StorageDriver = "sqlite"

	// StoragePostgres is PostgreSQL with the pgvector extension.
	StoragePostgres StorageDriver = "postgres"
)

// IsValid returns true if the storage driver is recognised.
func (d StorageDriver) IsValid() bool {
	return d == StorageSQLite || d == StoragePostgres
}

// AISettings holds provider configuration for embeddings and answer generation.
type AISettings struct {
	// Provider is the resolved AI provider.
	Provider AIProvider

	// EmbeddingModel is the embedding model name.
	EmbeddingModel string

	// ChatModel is the answer-generation model name.
	ChatModel string

	// BaseURL overrides the provider API endpoint.
	BaseURL string

	// APIKey is the key for the selected provider.
	APIKey string

	// Temperature for answer generation.
	Temperature float64

	// MaxTokens caps the generated answer length.
	MaxTokens int

	// RequestsPerSecond throttles embedding calls during ingestion. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the provider can be used.
func (a AISettings) IsConfigured() bool {
	if !a.Provider.IsValid() {
		return false
	}
	if a.Provider.RequiresAPIKey() && a.APIKey == "" {
		return false
	}
	return true
}

// EmbeddingSettings holds vector configuration.
type EmbeddingSettings struct {
	// Dimensions is the canonical vector size every stored chunk must have.
	Dimensions int
}

// SearchSettings holds retrieval configuration.
type SearchSettings struct {
	// Threshold is the minimum raw similarity (exclusive) for a candidate.
	Threshold float64

	// TopK is the number of ranked results forwarded to context assembly.
	TopK int
}

// ChunkingSettings holds splitter configuration.
type ChunkingSettings struct {
	Size    int
	Overlap int
}

// StorageSettings holds corpus store configuration.
type StorageSettings struct {
	Driver StorageDriver

	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string

	// DataDir is where the SQLite database lives.
	DataDir string

	// MaxOpenConns bounds the connection pool.
	MaxOpenConns int
}

// ServerSettings holds HTTP API configuration.
type ServerSettings struct {
	Port        int
	CORSOrigins []string
}

// CorpusSettings identifies the document set to ingest.
type CorpusSettings struct {
	// Owner, Repo and Branch locate the GitHub repository.
	Owner  string
	Repo   string
	Branch string

	// Dir, when set, ingests markdown files from a local directory instead of GitHub.
	Dir string

	// GitHubToken is optional; anonymous access is rate limited more aggressively.
	GitHubToken string
}

// Settings holds all application settings.
// It is built once at start-up and passed by value to constructors.
type Settings struct {
	AI        AISettings
	Embedding EmbeddingSettings
	Search    SearchSettings
	Chunking  ChunkingSettings
	Storage   StorageSettings
	Server    ServerSettings
	Corpus    CorpusSettings

	// ProviderFellBack is true when the configured provider was not recognised.
	ProviderFellBack bool

	// Verbose enables debug logging.
	Verbose bool
}

// DefaultSettings returns settings with sensible defaults.
// API keys are left empty.
func DefaultSettings() Settings {
	return Settings{
		AI: AISettings{
			Provider:       DefaultAIProvider,
			EmbeddingModel: DefaultEmbeddingModels()[DefaultAIProvider],
			ChatModel:      DefaultChatModels()[DefaultAIProvider],
			Temperature:    0.3,
			MaxTokens:      1000,
		},
		Embedding: EmbeddingSettings{
			Dimensions: 1024,
		},
		Search: SearchSettings{
			Threshold: 0.5,
			TopK:      10,
		},
		Chunking: ChunkingSettings{
			Size:    1000,
			Overlap: 200,
		},
		Storage: StorageSettings{
			Driver:       StorageSQLite,
			MaxOpenConns: 10,
		},
		Server: ServerSettings{
			Port:        3001,
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Corpus: CorpusSettings{
			Owner:  "amasad",
			Repo:   "jfk_files",
			Branch: "main",
		},
	}
}
