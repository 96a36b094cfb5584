package domain

import (
	"path"
	"time"
)

// Document represents a corpus file.
// Documents are keyed by Path; re-ingesting the same path replaces the content.
type Document struct {
	// ID is the store-assigned identifier.
	ID string

	// Path is the unique location of the file within the corpus.
	Path string

	// Title is the human-readable title (the last path segment).
	Title string

	// Content is the full raw text.
	Content string

	// URL is the canonical web location of the file.
	URL string

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document content was last replaced.
	UpdatedAt time.Time
}

// TitleFromPath returns the last segment of a corpus path.
func TitleFromPath(p string) string {
	base := path.Base(p)
	if base == "." || base == "/" {
		return p
	}
	return base
}

// Chunk is a bounded, overlapping slice of a document used as the unit of retrieval.
// Indices within a document form a contiguous range starting at 0.
type Chunk struct {
	// ID is the store-assigned identifier.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Index is the zero-based position within the document.
	Index int

	// Content is the trimmed, non-empty text.
	Content string

	// Embedding has exactly the canonical number of dimensions.
	Embedding []float32
}

// ChunkCandidate is a splitter output before embedding.
type ChunkCandidate struct {
	Index   int
	Content string

	// Start and End are byte offsets of the untrimmed span in the source text.
	Start int
	End   int
}

// EmbeddedChunk is a chunk candidate paired with its vector, ready for storage.
type EmbeddedChunk struct {
	Index     int
	Content   string
	Embedding []float32
}

// CorpusFile identifies a file offered by a corpus source.
type CorpusFile struct {
	// Path is the location of the file relative to the corpus root.
	Path string

	// URL is the canonical web location of the file.
	URL string
}

// CorpusStats summarises what the store holds.
type CorpusStats struct {
	Files  int
	Chunks int
}

// IngestReport describes the outcome of an ingestion run.
type IngestReport struct {
	// AlreadyInitialized is true when the store held documents and no work was done.
	AlreadyInitialized bool

	// Files is the number of documents in the store after the run.
	Files int

	// Chunks is the number of chunks in the store after the run.
	Chunks int
}
