package domain

// ChunkMatch is a candidate chunk returned by the store with its raw similarity.
type ChunkMatch struct {
	// Chunk is the matched chunk. Embedding may be nil.
	Chunk Chunk

	// Document carries the owning document's path, title and URL. Content is not loaded.
	Document Document

	// Similarity is 1 - cosine distance to the query vector.
	Similarity float64
}

// SearchResult represents a single ranked hit. It is produced per query and never persisted.
type SearchResult struct {
	// Document is the owning document (path, title, URL).
	Document Document

	// Chunk is the matched chunk.
	Chunk Chunk

	// Similarity is the raw cosine similarity.
	Similarity float64

	// PositionWeight favours chunks early in their document.
	PositionWeight float64

	// LengthWeight penalises abnormally short or long chunks.
	LengthWeight float64

	// Rank is Similarity * PositionWeight * LengthWeight.
	Rank float64
}
