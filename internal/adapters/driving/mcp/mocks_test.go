package mcp

import (
	"context"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

// mockQuestionService implements driving.QuestionService.
type mockQuestionService struct {
	answer domain.Answer
	err    error
	query  string
	ctxErr error
}

func (m *mockQuestionService) Ask(ctx context.Context, query string) (domain.Answer, error) {
	m.query = query
	m.ctxErr = ctx.Err()
	return m.answer, m.err
}

// mockSearchService implements driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	err     error
	limit   int
	ctxErr  error
}

func (m *mockSearchService) Search(ctx context.Context, _ string, limit int) ([]domain.SearchResult, error) {
	m.limit = limit
	m.ctxErr = ctx.Err()
	return m.results, m.err
}

// mockCorpusService implements driving.IngestService.
type mockCorpusService struct {
	stats    domain.CorpusStats
	docs     map[string]*domain.Document
	err      error
	lastPath string
}

func (m *mockCorpusService) Ingest(_ context.Context) (*domain.IngestReport, error) {
	return &domain.IngestReport{AlreadyInitialized: true, Files: m.stats.Files, Chunks: m.stats.Chunks}, m.err
}

func (m *mockCorpusService) Stats(_ context.Context) (domain.CorpusStats, error) {
	return m.stats, m.err
}

func (m *mockCorpusService) Document(_ context.Context, path string) (*domain.Document, error) {
	m.lastPath = path
	if m.err != nil {
		return nil, m.err
	}
	doc, ok := m.docs[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func newPorts() *Ports {
	return &Ports{
		Questions: &mockQuestionService{},
		Search:    &mockSearchService{},
	}
}
