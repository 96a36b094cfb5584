package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/logger"
)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyAIProvider        = "ai.provider"
	KeyAIEmbeddingModel  = "ai.embedding_model"
	KeyAIChatModel       = "ai.chat_model"
	KeyAIBaseURL         = "ai.base_url"
	KeyAIRequestsPerSec  = "ai.requests_per_second"
	KeyOpenAIAPIKey      = "ai.openai_api_key"
	KeyMistralAPIKey     = "ai.mistral_api_key"
	KeyEmbeddingDims     = "embedding.dimensions"
	KeySearchThreshold   = "search.threshold"
	KeySearchTopK        = "search.top_k"
	KeyChunkingSize      = "chunking.size"
	KeyChunkingOverlap   = "chunking.overlap"
	KeyStorageDriver     = "storage.driver"
	KeyStorageURL        = "storage.database_url"
	KeyStorageDataDir    = "storage.data_dir"
	KeyStorageMaxConns   = "storage.max_open_conns"
	KeyServerPort        = "server.port"
	KeyServerCORSOrigins = "server.cors_origins"
	KeyCorpusOwner       = "corpus.owner"
	KeyCorpusRepo        = "corpus.repo"
	KeyCorpusBranch      = "corpus.branch"
	KeyCorpusDir         = "corpus.dir"
)

// Environment variables. They take precedence over the config file.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvPort          = "PORT"
	EnvDatabaseURL   = "DATABASE_URL"
	EnvAIProvider    = "AI_PROVIDER"
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvMistralKey    = "MISTRAL_API_KEY"
	EnvOllamaBaseURL = "OLLAMA_BASE_URL"
	EnvEmbeddingDims = "EMBEDDING_DIMENSIONS"
	EnvGitHubToken   = "GITHUB_TOKEN"
	EnvCorpusDir     = "CORPUS_DIR"
	EnvCORSOrigins   = "CORS_ORIGINS"
	EnvDataDir       = "DOSSIER_DATA_DIR"
	EnvLogVerbose    = "LOG_VERBOSE"
)

// LoadSettings builds settings from the config store and environment.
// Precedence is environment, then config file, then defaults.
// getenv is usually os.Getenv; store may be nil.
//
// The provider name is resolved here and nowhere else. An unrecognised name
// falls back to the default provider and sets ProviderFellBack.
func LoadSettings(store driven.ConfigStore, getenv func(string) string) (domain.Settings, error) {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	l := &loader{store: store, getenv: getenv}
	s := domain.DefaultSettings()

	// Provider first: model defaults depend on it.
	providerName := l.getString(EnvAIProvider, KeyAIProvider, "")
	if providerName != "" {
		s.AI.Provider, s.ProviderFellBack = domain.ResolveProvider(providerName)
	}
	s.AI.EmbeddingModel = l.getString("", KeyAIEmbeddingModel, domain.DefaultEmbeddingModels()[s.AI.Provider])
	s.AI.ChatModel = l.getString("", KeyAIChatModel, domain.DefaultChatModels()[s.AI.Provider])
	s.AI.BaseURL = l.getString("", KeyAIBaseURL, "")
	if s.AI.Provider == domain.AIProviderOllama {
		s.AI.BaseURL = l.getString(EnvOllamaBaseURL, KeyAIBaseURL, "")
	}
	switch s.AI.Provider {
	case domain.AIProviderOpenAI:
		s.AI.APIKey = l.getString(EnvOpenAIKey, KeyOpenAIAPIKey, "")
	case domain.AIProviderMistral:
		s.AI.APIKey = l.getString(EnvMistralKey, KeyMistralAPIKey, "")
	}

	var err error
	if s.AI.RequestsPerSecond, err = l.getFloat("", KeyAIRequestsPerSec, 0); err != nil {
		return s, err
	}
	if s.Embedding.Dimensions, err = l.getInt(EnvEmbeddingDims, KeyEmbeddingDims, s.Embedding.Dimensions); err != nil {
		return s, err
	}
	if s.Search.Threshold, err = l.getFloat("", KeySearchThreshold, s.Search.Threshold); err != nil {
		return s, err
	}
	if s.Search.TopK, err = l.getInt("", KeySearchTopK, s.Search.TopK); err != nil {
		return s, err
	}
	if s.Chunking.Size, err = l.getInt("", KeyChunkingSize, s.Chunking.Size); err != nil {
		return s, err
	}
	if s.Chunking.Overlap, err = l.getInt("", KeyChunkingOverlap, s.Chunking.Overlap); err != nil {
		return s, err
	}

	s.Storage.DatabaseURL = l.getString(EnvDatabaseURL, KeyStorageURL, "")
	driver := l.getString("", KeyStorageDriver, "")
	if driver == "" && s.Storage.DatabaseURL != "" {
		driver = string(domain.StoragePostgres)
	}
	if driver != "" {
		s.Storage.Driver = domain.StorageDriver(strings.ToLower(driver))
	}
	s.Storage.DataDir = l.getString(EnvDataDir, KeyStorageDataDir, "")
	if s.Storage.MaxOpenConns, err = l.getInt("", KeyStorageMaxConns, s.Storage.MaxOpenConns); err != nil {
		return s, err
	}

	if s.Server.Port, err = l.getInt(EnvPort, KeyServerPort, s.Server.Port); err != nil {
		return s, err
	}
	s.Server.CORSOrigins = l.getList(EnvCORSOrigins, KeyServerCORSOrigins, s.Server.CORSOrigins)

	s.Corpus.Owner = l.getString("", KeyCorpusOwner, s.Corpus.Owner)
	s.Corpus.Repo = l.getString("", KeyCorpusRepo, s.Corpus.Repo)
	s.Corpus.Branch = l.getString("", KeyCorpusBranch, s.Corpus.Branch)
	s.Corpus.Dir = l.getString(EnvCorpusDir, KeyCorpusDir, "")
	s.Corpus.GitHubToken = getenv(EnvGitHubToken)

	s.Verbose = isTruthy(getenv(EnvLogVerbose))

	if err := Validate(s); err != nil {
		return s, err
	}
	return s, nil
}

// Validate checks settings for values no component can work with.
func Validate(s domain.Settings) error {
	switch {
	case s.Embedding.Dimensions <= 0:
		return &domain.ValidationError{Field: KeyEmbeddingDims, Message: "must be positive"}
	case s.Search.Threshold < 0 || s.Search.Threshold >= 1:
		return &domain.ValidationError{Field: KeySearchThreshold, Message: "must be in [0, 1)"}
	case s.Search.TopK <= 0:
		return &domain.ValidationError{Field: KeySearchTopK, Message: "must be positive"}
	case s.Chunking.Size <= 0:
		return &domain.ValidationError{Field: KeyChunkingSize, Message: "must be positive"}
	case s.Chunking.Overlap < 0 || s.Chunking.Overlap >= s.Chunking.Size:
		return &domain.ValidationError{Field: KeyChunkingOverlap, Message: "must be in [0, chunking.size)"}
	case !s.Storage.Driver.IsValid():
		return &domain.ValidationError{Field: KeyStorageDriver, Message: fmt.Sprintf("unknown driver %q", s.Storage.Driver)}
	case s.Storage.Driver == domain.StoragePostgres && s.Storage.DatabaseURL == "":
		return &domain.ValidationError{Field: KeyStorageURL, Message: "required for postgres"}
	case s.Server.Port <= 0 || s.Server.Port > 65535:
		return &domain.ValidationError{Field: KeyServerPort, Message: "must be a valid TCP port"}
	}
	return nil
}

// LogDiagnostics reports the effective configuration without secret values.
func LogDiagnostics(s domain.Settings) {
	logger.Section("Configuration")
	if s.ProviderFellBack {
		logger.Warn("Unknown AI provider, falling back to %s", s.AI.Provider)
	}
	logger.Info("AI provider: %s (embedding %s, chat %s)", s.AI.Provider.Description(), s.AI.EmbeddingModel, s.AI.ChatModel)
	logger.Info("API key set: %t", s.AI.APIKey != "")
	logger.Info("Database URL set: %t", s.Storage.DatabaseURL != "")
	logger.Info("GitHub token set: %t", s.Corpus.GitHubToken != "")
	logger.Info("Storage: %s, embedding dimensions %d", s.Storage.Driver, s.Embedding.Dimensions)
	logger.Info("Port: %d", s.Server.Port)
}

type loader struct {
	store  driven.ConfigStore
	getenv func(string) string
}

// raw returns the first non-empty value from the environment then the store.
func (l *loader) raw(env, key string) (any, bool) {
	if env != "" {
		if v := strings.TrimSpace(l.getenv(env)); v != "" {
			return v, true
		}
	}
	if l.store != nil {
		if v, ok := l.store.Get(key); ok {
			return v, true
		}
	}
	return nil, false
}

func (l *loader) getString(env, key, def string) string {
	v, ok := l.raw(env, key)
	if !ok {
		return def
	}
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

func (l *loader) getInt(env, key string, def int) (int, error) {
	v, ok := l.raw(env, key)
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return def, &domain.ValidationError{Field: key, Message: fmt.Sprintf("not an integer: %q", n)}
		}
		return i, nil
	default:
		return def, &domain.ValidationError{Field: key, Message: fmt.Sprintf("unexpected type %T", v)}
	}
}

func (l *loader) getFloat(env, key string, def float64) (float64, error) {
	v, ok := l.raw(env, key)
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return def, &domain.ValidationError{Field: key, Message: fmt.Sprintf("not a number: %q", n)}
		}
		return f, nil
	default:
		return def, &domain.ValidationError{Field: key, Message: fmt.Sprintf("unexpected type %T", v)}
	}
}

func (l *loader) getList(env, key string, def []string) []string {
	if env != "" {
		if v := strings.TrimSpace(l.getenv(env)); v != "" {
			return splitList(v)
		}
	}
	if l.store != nil {
		if v := l.store.GetStringSlice(key); len(v) > 0 {
			return v
		}
		if v := l.store.GetString(key); v != "" {
			return splitList(v)
		}
	}
	return def
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
