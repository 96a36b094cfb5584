package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Texts listed in vectors get that vector; anything else gets fallback.
type mockEmbeddingService struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	fallback []float32
	embedErr error
	failAt   int // 1-based call number that fails with embedErr; 0 means every call when embedErr is set
	calls    []string
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, text)
	if m.embedErr != nil && (m.failAt == 0 || m.failAt == len(m.calls)) {
		return nil, m.embedErr
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	if m.fallback != nil {
		return m.fallback, nil
	}
	return []float32{1, 0, 0}, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int { return 3 }
func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error { return nil }

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	reply    string
	chatErr  error
	calls    int
	messages []driven.ChatMessage
	opts     driven.ChatOptions
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.calls++
	m.messages = messages
	m.opts = opts
	if m.chatErr != nil {
		return "", m.chatErr
	}
	return m.reply, nil
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error { return nil }

// mockSource implements driven.CorpusSource for testing.
type mockSource struct {
	files    []domain.CorpusFile
	contents map[string]string
	listErr  error
	fetchErr map[string]error
}

func (m *mockSource) Name() string { return "mock" }

func (m *mockSource) List(_ context.Context) ([]domain.CorpusFile, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.files, nil
}

func (m *mockSource) Fetch(_ context.Context, f domain.CorpusFile) (string, error) {
	if err := m.fetchErr[f.Path]; err != nil {
		return "", err
	}
	content, ok := m.contents[f.Path]
	if !ok {
		return "", domain.ErrNotFound
	}
	return content, nil
}

// mockSearcher implements driven.ChunkSearcher with canned matches.
type mockSearcher struct {
	matches []domain.ChunkMatch
	maxSim  float64
	err     error
	minSeen float64
}

func (m *mockSearcher) MatchChunks(_ context.Context, _ []float32, minSimilarity float64) ([]domain.ChunkMatch, error) {
	m.minSeen = minSimilarity
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.ChunkMatch
	for _, match := range m.matches {
		if match.Similarity > minSimilarity {
			out = append(out, match)
		}
	}
	return out, nil
}

func (m *mockSearcher) MaxSimilarity(_ context.Context, _ []float32) (float64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.maxSim, nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", errors.New("prompt not found")
}

func (m *mockPromptStore) Reload() {}

// countingLimiter implements Limiter for testing.
type countingLimiter struct {
	waits int
	err   error
}

func (l *countingLimiter) Wait(_ context.Context) error {
	l.waits++
	return l.err
}
