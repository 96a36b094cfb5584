package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
	"github.com/custodia-labs/dossier/internal/logger"
)

// Ensure QuestionService implements the interfaces.
var (
	_ driving.QuestionService = (*QuestionService)(nil)
	_ driving.SearchService   = (*QuestionService)(nil)
)

// QuestionService answers questions by retrieving context and asking the LLM.
type QuestionService struct {
	embedder  driven.EmbeddingService
	llm       driven.LLMService
	search    *SimilaritySearch
	assembler *ContextAssembler
	prompts   driven.PromptStore
	chatOpts  driven.ChatOptions
}

// NewQuestionService creates a question service.
// The embedder should be dimension-guarded so query vectors match the store.
func NewQuestionService(
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	search *SimilaritySearch,
	assembler *ContextAssembler,
) *QuestionService {
	defaults := domain.DefaultSettings().AI
	return &QuestionService{
		embedder:  embedder,
		llm:       llm,
		search:    search,
		assembler: assembler,
		chatOpts: driven.ChatOptions{
			MaxTokens:   defaults.MaxTokens,
			Temperature: defaults.Temperature,
		},
	}
}

// SetPromptStore sets the store for user-customised prompts.
// Without one the built-in prompts are used.
func (s *QuestionService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// SetChatOptions overrides the generation parameters.
func (s *QuestionService) SetChatOptions(opts driven.ChatOptions) {
	s.chatOpts = opts
}

// Ask answers query from the corpus.
func (s *QuestionService) Ask(ctx context.Context, query string) (domain.Answer, error) {
	logger.Section("Ask")

	query, err := s.validate(query)
	if err != nil {
		return domain.Answer{}, err
	}
	if s.llm == nil {
		return domain.Answer{}, domain.ErrLLMUnavailable
	}

	vec, err := s.embedQuery(ctx, query)
	if err != nil {
		return domain.Answer{}, err
	}

	results, err := s.search.Search(ctx, vec, 0)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("search: %w", err)
	}

	if len(results) == 0 {
		maxSim, err := s.search.MaxSimilarity(ctx, vec)
		if err != nil {
			logger.Warn("Could not compute max similarity: %v", err)
		}
		logger.Info("No chunks above threshold, max similarity %.4f", maxSim)
		return domain.NewNoContext(maxSim), nil
	}
	logger.Debug("Using %d results, top rank %.4f", len(results), results[0].Rank)

	blocks, err := s.assembler.Assemble(ctx, results)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("assemble context: %w", err)
	}

	messages, err := s.buildMessages(JoinContext(blocks), query)
	if err != nil {
		return domain.Answer{}, err
	}

	done := logger.Timed("generate answer")
	text, err := s.llm.Chat(ctx, messages, s.chatOpts)
	done()
	if err != nil {
		return domain.Answer{}, fmt.Errorf("generate answer: %w", err)
	}

	return domain.NewAnswered(text, sourcesOf(results)), nil
}

// Search returns ranked chunks for query without generating an answer.
func (s *QuestionService) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	logger.Section("Search")

	query, err := s.validate(query)
	if err != nil {
		return nil, err
	}

	vec, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := s.search.Search(ctx, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return results, nil
}

func (s *QuestionService) validate(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", &domain.ValidationError{Field: "query", Message: "must not be empty"}
	}
	if s.embedder == nil {
		return "", domain.ErrEmbeddingUnavailable
	}
	logger.Debug("Query: %q", query)
	return query, nil
}

func (s *QuestionService) embedQuery(ctx context.Context, query string) ([]float32, error) {
	done := logger.Timed("embed query")
	defer done()

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	logger.Debug("Query embedding has %d dimensions", len(vec))
	return vec, nil
}

func (s *QuestionService) buildMessages(contextText, query string) ([]driven.ChatMessage, error) {
	system, err := s.prompt(driven.PromptAnswerSystem)
	if err != nil {
		return nil, err
	}
	user, err := s.prompt(driven.PromptAnswerUser)
	if err != nil {
		return nil, err
	}

	return []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: system},
		{Role: driven.RoleUser, Content: fmt.Sprintf(user, contextText, query)},
	}, nil
}

func (s *QuestionService) prompt(name string) (string, error) {
	if s.prompts != nil {
		p, err := s.prompts.Load(name)
		if err != nil {
			return "", fmt.Errorf("load prompt %q: %w", name, err)
		}
		return p, nil
	}
	p, ok := driven.DefaultPrompts()[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	return p, nil
}

func sourcesOf(results []domain.SearchResult) []domain.Source {
	sources := make([]domain.Source, 0, len(results))
	for _, r := range results {
		sources = append(sources, domain.Source{
			Title:      r.Document.Title,
			URL:        r.Document.URL,
			Similarity: r.Similarity,
		})
	}
	return sources
}
