package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dossier/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/dossier/internal/chunker"
	"github.com/custodia-labs/dossier/internal/core/domain"
)

func newCorpusSource() *mockSource {
	return &mockSource{
		files: []domain.CorpusFile{
			{Path: "README.md", URL: "https://github.com/amasad/jfk_files/blob/main/README.md"},
			{Path: "docs/104-10004-10143.md", URL: "https://github.com/amasad/jfk_files/blob/main/docs/104-10004-10143.md"},
		},
		contents: map[string]string{
			"README.md":               "Declassified JFK files.",
			"docs/104-10004-10143.md": strings.Repeat("abcdefghij", 250),
		},
	}
}

func TestIngestService_Ingest(t *testing.T) {
	ctx := context.Background()
	store := memory.NewCorpusStore()
	source := newCorpusSource()
	svc := NewIngestService(store, source, NewChunkProcessor(chunker.New(), &mockEmbeddingService{}))

	report, err := svc.Ingest(ctx)

	require.NoError(t, err)
	assert.False(t, report.AlreadyInitialized)
	assert.Equal(t, 2, report.Files)
	assert.Equal(t, 4, report.Chunks)

	doc, err := store.GetDocumentByPath(ctx, "docs/104-10004-10143.md")
	require.NoError(t, err)
	assert.Equal(t, "104-10004-10143.md", doc.Title)
	assert.Equal(t, source.files[1].URL, doc.URL)
	assert.Equal(t, source.contents["docs/104-10004-10143.md"], doc.Content)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.CorpusStats{Files: 2, Chunks: 4}, stats)
}

func TestIngestService_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewCorpusStore()
	embedder := &mockEmbeddingService{}
	svc := NewIngestService(store, newCorpusSource(), NewChunkProcessor(nil, embedder))

	_, err := svc.Ingest(ctx)
	require.NoError(t, err)
	callsAfterFirst := len(embedder.calls)

	report, err := svc.Ingest(ctx)

	require.NoError(t, err)
	assert.True(t, report.AlreadyInitialized)
	assert.Equal(t, 2, report.Files)
	assert.Equal(t, 4, report.Chunks)
	assert.Len(t, embedder.calls, callsAfterFirst, "second run must not embed")
}

func TestIngestService_RollsBackOnEmbedFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.NewCorpusStore()
	embedder := &mockEmbeddingService{
		embedErr: domain.NewProviderError("mistral", "embed", errors.New("rate limited")),
		failAt:   3,
	}
	svc := NewIngestService(store, newCorpusSource(), NewChunkProcessor(nil, embedder))

	_, err := svc.Ingest(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.Contains(t, err.Error(), "docs/104-10004-10143.md")
	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.CorpusStats{}, stats, "nothing may be committed")
}

func TestIngestService_FetchFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.NewCorpusStore()
	source := newCorpusSource()
	source.fetchErr = map[string]error{"docs/104-10004-10143.md": errors.New("404")}
	svc := NewIngestService(store, source, NewChunkProcessor(nil, &mockEmbeddingService{}))

	_, err := svc.Ingest(ctx)

	require.Error(t, err)
	stats, _ := store.Stats(ctx)
	assert.Zero(t, stats.Files)
}

func TestIngestService_ListFailure(t *testing.T) {
	boom := errors.New("github unavailable")
	svc := NewIngestService(memory.NewCorpusStore(), &mockSource{listErr: boom}, NewChunkProcessor(nil, &mockEmbeddingService{}))

	_, err := svc.Ingest(context.Background())

	assert.ErrorIs(t, err, boom)
}

func TestIngestService_NoSource(t *testing.T) {
	svc := NewIngestService(memory.NewCorpusStore(), nil, NewChunkProcessor(nil, &mockEmbeddingService{}))

	_, err := svc.Ingest(context.Background())

	assert.Error(t, err)
}

func TestIngestService_Document(t *testing.T) {
	ctx := context.Background()
	store := memory.NewCorpusStore()
	processor := NewChunkProcessor(chunker.New(), &mockEmbeddingService{})
	svc := NewIngestService(store, newCorpusSource(), processor)
	_, err := svc.Ingest(ctx)
	require.NoError(t, err)

	doc, err := svc.Document(ctx, "README.md")
	require.NoError(t, err)
	assert.Equal(t, "Declassified JFK files.", doc.Content)

	_, err = svc.Document(ctx, "missing.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Document(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
