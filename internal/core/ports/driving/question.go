package driving

import (
	"context"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

// QuestionService answers questions from the ingested corpus.
type QuestionService interface {
	// Ask returns a grounded answer with cited sources.
	// A blank query fails with *domain.ValidationError. A query with no relevant
	// context is not an error; it yields an answer of kind domain.AnswerNoContext.
	Ask(ctx context.Context, query string) (domain.Answer, error)
}

// SearchService exposes ranked retrieval without answer generation.
type SearchService interface {
	// Search embeds the query and returns at most limit ranked results.
	// A limit of zero uses the configured default.
	Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)
}

// IngestService loads the corpus into the store.
type IngestService interface {
	// Ingest populates an empty store from the corpus source in one transaction.
	// When the store already holds documents it reports the existing counts and writes nothing.
	Ingest(ctx context.Context) (*domain.IngestReport, error)

	// Stats returns the current document and chunk counts.
	Stats(ctx context.Context) (domain.CorpusStats, error)

	// Document returns the ingested document at path, or domain.ErrNotFound.
	Document(ctx context.Context, path string) (*domain.Document, error)
}
