package driven

import (
	"context"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

// ChunkSearcher scores stored chunks against a query vector.
// Similarity is 1 - cosine distance.
type ChunkSearcher interface {
	// MatchChunks returns every chunk whose similarity is strictly greater than minSimilarity.
	// Order is unspecified; ranking belongs to the caller.
	MatchChunks(ctx context.Context, query []float32, minSimilarity float64) ([]domain.ChunkMatch, error)

	// MaxSimilarity returns the highest similarity across the whole corpus, or 0 when empty.
	MaxSimilarity(ctx context.Context, query []float32) (float64, error)
}

// NeighborReader reads chunks adjacent to a given chunk.
type NeighborReader interface {
	// NeighborChunks returns the chunks of documentID whose index lies in
	// [index-radius, index+radius], ordered by index. Missing indices are skipped.
	NeighborChunks(ctx context.Context, documentID string, index, radius int) ([]domain.Chunk, error)
}

// CorpusWriter writes documents and chunks inside a transaction.
type CorpusWriter interface {
	// UpsertDocument inserts or replaces a document keyed on Path and sets doc.ID.
	UpsertDocument(ctx context.Context, doc *domain.Document) error

	// UpsertChunks replaces every chunk of documentID with chunks; indices not in chunks are removed.
	UpsertChunks(ctx context.Context, documentID string, chunks []domain.EmbeddedChunk) error
}

// CorpusStore persists the corpus and answers similarity queries.
// Backed by SQLite or PostgreSQL with pgvector.
type CorpusStore interface {
	ChunkSearcher
	NeighborReader

	// Stats returns document and chunk counts.
	Stats(ctx context.Context) (domain.CorpusStats, error)

	// WithinTx runs fn in a single transaction.
	// The transaction commits only if fn returns nil; otherwise every write is rolled back.
	WithinTx(ctx context.Context, fn func(w CorpusWriter) error) error

	// GetDocumentByPath retrieves a document by its corpus path.
	// Returns domain.ErrNotFound if absent.
	GetDocumentByPath(ctx context.Context, path string) (*domain.Document, error)

	// Close releases the connection pool.
	Close() error
}
