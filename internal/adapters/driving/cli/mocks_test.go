package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

// mockQuestionService implements driving.QuestionService and driving.SearchService.
type mockQuestionService struct {
	answer  domain.Answer
	results []domain.SearchResult
	err     error
	query   string
	limit   int
}

func (m *mockQuestionService) Ask(_ context.Context, query string) (domain.Answer, error) {
	m.query = query
	return m.answer, m.err
}

func (m *mockQuestionService) Search(_ context.Context, query string, limit int) ([]domain.SearchResult, error) {
	m.query = query
	m.limit = limit
	return m.results, m.err
}

// mockIngestService implements driving.IngestService.
type mockIngestService struct {
	report *domain.IngestReport
	stats  domain.CorpusStats
	err    error
	calls  int
}

func (m *mockIngestService) Ingest(_ context.Context) (*domain.IngestReport, error) {
	m.calls++
	return m.report, m.err
}

func (m *mockIngestService) Stats(_ context.Context) (domain.CorpusStats, error) {
	return m.stats, m.err
}

func (m *mockIngestService) Document(_ context.Context, _ string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

type recordingCloser struct {
	name  string
	order *[]string
}

func (c recordingCloser) Close() error {
	*c.order = append(*c.order, c.name)
	return nil
}

// setupTestServices points the CLI at a temporary config directory and
// replaces service wiring with mocks.
func setupTestServices(t *testing.T) (*mockQuestionService, *mockIngestService) {
	t.Helper()

	questions := &mockQuestionService{}
	ingest := &mockIngestService{}

	origBuild := buildApp
	buildApp = func(context.Context, domain.Settings) (*application, error) {
		return &application{Questions: questions, Search: questions, Ingest: ingest}, nil
	}

	configDir = t.TempDir()
	envFile = ""
	verbose = false
	askJSON = false
	searchJSON = false
	searchLimit = 0
	servePort = 0

	t.Cleanup(func() {
		buildApp = origBuild
		current = nil
		configStore = nil
		configDir = ""
		envFile = ".env"
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	return questions, ingest
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}
