package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dossier/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

func newQuestionFixture(t *testing.T) (*QuestionService, *memory.CorpusStore, *mockEmbeddingService, *mockLLMService) {
	t.Helper()
	store := memory.NewCorpusStore()
	embedder := &mockEmbeddingService{vectors: map[string][]float32{}}
	llm := &mockLLMService{reply: "Oswald was employed at the depository."}
	svc := NewQuestionService(
		embedder,
		llm,
		NewSimilaritySearch(store, domain.DefaultSettings().Search),
		NewContextAssembler(store),
	)
	return svc, store, embedder, llm
}

func TestQuestionService_BlankQuery(t *testing.T) {
	svc, _, embedder, llm := newQuestionFixture(t)

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := svc.Ask(context.Background(), q)

		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "query", vErr.Field)
		assert.True(t, domain.IsClientError(err))
	}
	assert.Empty(t, embedder.calls)
	assert.Zero(t, llm.calls)
}

func TestQuestionService_NoContextSkipsLLM(t *testing.T) {
	svc, store, embedder, llm := newQuestionFixture(t)
	// Every stored chunk scores 0.4 against the query.
	seedDocument(t, store, "a.md", []float32{0.4, 0.9165, 0})
	embedder.fallback = []float32{1, 0, 0}

	answer, err := svc.Ask(context.Background(), "Who was Jack Ruby?")

	require.NoError(t, err)
	assert.Equal(t, domain.AnswerNoContext, answer.Kind)
	assert.False(t, answer.HasContext())
	assert.Equal(t, domain.InsufficientInformationAnswer, answer.Text)
	assert.Empty(t, answer.Sources)
	assert.NotNil(t, answer.Sources)
	assert.InDelta(t, 0.4, answer.MaxSimilarity, 0.001)
	assert.Zero(t, llm.calls)
}

func TestQuestionService_NoContextOnEmptyCorpus(t *testing.T) {
	svc, _, _, llm := newQuestionFixture(t)

	answer, err := svc.Ask(context.Background(), "anything")

	require.NoError(t, err)
	assert.Equal(t, domain.AnswerNoContext, answer.Kind)
	assert.Zero(t, answer.MaxSimilarity)
	assert.Zero(t, llm.calls)
}

func TestQuestionService_Answered(t *testing.T) {
	svc, store, _, llm := newQuestionFixture(t)
	best := seedDocument(t, store, "docs/warren.md", []float32{1, 0, 0}, []float32{0, 1, 0})
	second := seedDocument(t, store, "docs/hsca.md", []float32{0.8, 0.6, 0})

	answer, err := svc.Ask(context.Background(), "  Where did Oswald work?  ")

	require.NoError(t, err)
	assert.Equal(t, domain.AnswerAnswered, answer.Kind)
	assert.Equal(t, "Oswald was employed at the depository.", answer.Text)
	require.Len(t, answer.Sources, 2)
	assert.Equal(t, domain.Source{Title: "warren.md", URL: best.URL, Similarity: 1}, answer.Sources[0])
	assert.Equal(t, "hsca.md", answer.Sources[1].Title)
	assert.Equal(t, second.URL, answer.Sources[1].URL)
	assert.InDelta(t, 0.8, answer.Sources[1].Similarity, 1e-6)

	require.Equal(t, 1, llm.calls)
	require.Len(t, llm.messages, 2)
	assert.Equal(t, driven.RoleSystem, llm.messages[0].Role)
	assert.Contains(t, llm.messages[0].Content, "answers questions about JFK files")
	assert.Equal(t, driven.RoleUser, llm.messages[1].Role)

	wantUser := "Context:\n" +
		"From warren.md (Similarity: 1.00):\n\nchunk-0\n\nchunk-1\n\nSource: https://example.com/docs/warren.md" +
		"\n\n---\n\n" +
		"From hsca.md (Similarity: 0.80):\n\nchunk-0\n\nSource: https://example.com/docs/hsca.md" +
		"\n\nQuestion: Where did Oswald work?"
	assert.Equal(t, wantUser, llm.messages[1].Content)
	assert.Equal(t, driven.ChatOptions{MaxTokens: 1000, Temperature: 0.3}, llm.opts)
}

func TestQuestionService_PromptStoreAndChatOptions(t *testing.T) {
	svc, store, _, llm := newQuestionFixture(t)
	seedDocument(t, store, "a.md", []float32{1, 0, 0})
	svc.SetPromptStore(&mockPromptStore{prompts: map[string]string{
		driven.PromptAnswerSystem: "Be brief.",
		driven.PromptAnswerUser:   "Q=%[2]s C=%[1]s",
	}})
	svc.SetChatOptions(driven.ChatOptions{MaxTokens: 50, Temperature: 0})

	_, err := svc.Ask(context.Background(), "why")

	require.NoError(t, err)
	assert.Equal(t, "Be brief.", llm.messages[0].Content)
	assert.Contains(t, llm.messages[1].Content, "Q=why C=From a.md")
	assert.Equal(t, 50, llm.opts.MaxTokens)
}

func TestQuestionService_PromptStoreError(t *testing.T) {
	svc, store, _, llm := newQuestionFixture(t)
	seedDocument(t, store, "a.md", []float32{1, 0, 0})
	svc.SetPromptStore(&mockPromptStore{})

	_, err := svc.Ask(context.Background(), "why")

	require.Error(t, err)
	assert.Zero(t, llm.calls)
}

func TestQuestionService_EmbedError(t *testing.T) {
	svc, _, embedder, llm := newQuestionFixture(t)
	embedder.embedErr = domain.NewProviderError("openai", "embed", errors.New("401 unauthorized"))

	_, err := svc.Ask(context.Background(), "query")

	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.False(t, domain.IsClientError(err))
	assert.Zero(t, llm.calls)
}

func TestQuestionService_LLMError(t *testing.T) {
	svc, store, _, llm := newQuestionFixture(t)
	seedDocument(t, store, "a.md", []float32{1, 0, 0})
	llm.chatErr = domain.NewProviderError("mistral", "chat", errors.New("no choices"))

	_, err := svc.Ask(context.Background(), "query")

	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.Contains(t, err.Error(), "generate answer")
}

func TestQuestionService_MissingServices(t *testing.T) {
	store := memory.NewCorpusStore()
	search := NewSimilaritySearch(store, domain.DefaultSettings().Search)

	_, err := NewQuestionService(nil, &mockLLMService{}, search, NewContextAssembler(store)).Ask(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	_, err = NewQuestionService(&mockEmbeddingService{}, nil, search, NewContextAssembler(store)).Ask(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestQuestionService_Search(t *testing.T) {
	svc, store, _, llm := newQuestionFixture(t)
	seedDocument(t, store, "a.md", []float32{1, 0, 0}, []float32{0.9, 0.1, 0}, []float32{0.8, 0.2, 0})

	results, err := svc.Search(context.Background(), "query", 2)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 0, results[0].Chunk.Index)
	assert.Zero(t, llm.calls)

	_, err = svc.Search(context.Background(), " ", 2)
	assert.True(t, domain.IsClientError(err))
}
