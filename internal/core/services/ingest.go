package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
	"github.com/custodia-labs/dossier/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService loads the corpus source into the store.
type IngestService struct {
	store     driven.CorpusStore
	source    driven.CorpusSource
	processor *ChunkProcessor
}

// NewIngestService creates an ingest service.
func NewIngestService(store driven.CorpusStore, source driven.CorpusSource, processor *ChunkProcessor) *IngestService {
	return &IngestService{
		store:     store,
		source:    source,
		processor: processor,
	}
}

// Ingest populates an empty store in a single transaction.
// A store that already holds documents is left untouched.
func (s *IngestService) Ingest(ctx context.Context) (*domain.IngestReport, error) {
	logger.Section("Ingest")

	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	if stats.Files > 0 {
		logger.Info("Store already holds %d files and %d chunks", stats.Files, stats.Chunks)
		return &domain.IngestReport{
			AlreadyInitialized: true,
			Files:              stats.Files,
			Chunks:             stats.Chunks,
		}, nil
	}

	if s.source == nil {
		return nil, errors.New("no corpus source configured")
	}

	files, err := s.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.source.Name(), err)
	}
	logger.Info("Found %d files in %s", len(files), s.source.Name())

	report := &domain.IngestReport{}
	err = s.store.WithinTx(ctx, func(w driven.CorpusWriter) error {
		for _, f := range files {
			n, err := s.ingestFile(ctx, w, f)
			if err != nil {
				return fmt.Errorf("ingest %s: %w", f.Path, err)
			}
			report.Files++
			report.Chunks += n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Ingested %d files into %d chunks", report.Files, report.Chunks)
	return report, nil
}

// Stats returns the store's current counts.
func (s *IngestService) Stats(ctx context.Context) (domain.CorpusStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return domain.CorpusStats{}, fmt.Errorf("corpus stats: %w", err)
	}
	return stats, nil
}

// Document looks up an ingested document by its corpus path.
func (s *IngestService) Document(ctx context.Context, path string) (*domain.Document, error) {
	if path == "" {
		return nil, &domain.ValidationError{Field: "path", Message: "must not be empty"}
	}
	doc, err := s.store.GetDocumentByPath(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", path, err)
	}
	return doc, nil
}

func (s *IngestService) ingestFile(ctx context.Context, w driven.CorpusWriter, f domain.CorpusFile) (int, error) {
	content, err := s.source.Fetch(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}

	doc := &domain.Document{
		Path:    f.Path,
		Title:   domain.TitleFromPath(f.Path),
		Content: content,
		URL:     f.URL,
	}
	if err := w.UpsertDocument(ctx, doc); err != nil {
		return 0, fmt.Errorf("upsert document: %w", err)
	}

	chunks, err := s.processor.Process(ctx, content)
	if err != nil {
		return 0, err
	}

	if err := w.UpsertChunks(ctx, doc.ID, chunks); err != nil {
		return 0, fmt.Errorf("upsert chunks: %w", err)
	}

	logger.Debug("%s: %d chunks", f.Path, len(chunks))
	return len(chunks), nil
}
