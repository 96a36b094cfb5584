package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/dossier/internal/adapters/driven/storage/vector"
	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// Ensure CorpusStore implements the interface.
var _ driven.CorpusStore = (*CorpusStore)(nil)

// CorpusStore is an in-memory implementation of driven.CorpusStore.
// Transactions are serialised and applied to a copy that replaces the live state on commit.
type CorpusStore struct {
	mu    sync.RWMutex
	state corpusState
}

type corpusState struct {
	// documents keyed by ID; byPath maps Path to ID.
	documents map[string]domain.Document
	byPath    map[string]string

	// chunks keyed by document ID, then chunk index.
	chunks map[string]map[int]domain.Chunk
}

func newCorpusState() corpusState {
	return corpusState{
		documents: make(map[string]domain.Document),
		byPath:    make(map[string]string),
		chunks:    make(map[string]map[int]domain.Chunk),
	}
}

func (st corpusState) clone() corpusState {
	c := newCorpusState()
	for k, v := range st.documents {
		c.documents[k] = v
	}
	for k, v := range st.byPath {
		c.byPath[k] = v
	}
	for docID, byIndex := range st.chunks {
		m := make(map[int]domain.Chunk, len(byIndex))
		for i, ch := range byIndex {
			m[i] = ch
		}
		c.chunks[docID] = m
	}
	return c
}

// NewCorpusStore creates a new in-memory corpus store.
func NewCorpusStore() *CorpusStore {
	return &CorpusStore{state: newCorpusState()}
}

// MatchChunks scores every chunk and returns those strictly above minSimilarity.
func (s *CorpusStore) MatchChunks(
	_ context.Context, query []float32, minSimilarity float64,
) ([]domain.ChunkMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []domain.ChunkMatch
	for docID, byIndex := range s.state.chunks {
		doc := s.state.documents[docID]
		doc.Content = ""
		for _, ch := range byIndex {
			sim := vector.Similarity(query, ch.Embedding)
			if sim > minSimilarity {
				matches = append(matches, domain.ChunkMatch{Chunk: ch, Document: doc, Similarity: sim})
			}
		}
	}
	return matches, nil
}

// MaxSimilarity returns the best similarity across all chunks, or 0 when empty.
func (s *CorpusStore) MaxSimilarity(_ context.Context, query []float32) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best, found := 0.0, false
	for _, byIndex := range s.state.chunks {
		for _, ch := range byIndex {
			sim := vector.Similarity(query, ch.Embedding)
			if !found || sim > best {
				best, found = sim, true
			}
		}
	}
	return best, nil
}

// NeighborChunks returns chunks of documentID within radius of index, ordered by index.
func (s *CorpusStore) NeighborChunks(
	_ context.Context, documentID string, index, radius int,
) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byIndex := s.state.chunks[documentID]
	var out []domain.Chunk
	for i := index - radius; i <= index+radius; i++ {
		if ch, ok := byIndex[i]; ok {
			out = append(out, ch)
		}
	}
	return out, nil
}

// Stats returns document and chunk counts.
func (s *CorpusStore) Stats(_ context.Context) (domain.CorpusStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.CorpusStats{Files: len(s.state.documents)}
	for _, byIndex := range s.state.chunks {
		stats.Chunks += len(byIndex)
	}
	return stats, nil
}

// WithinTx runs fn against a private copy of the store and publishes it if fn succeeds.
func (s *CorpusStore) WithinTx(ctx context.Context, fn func(w driven.CorpusWriter) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := &corpusWriter{state: s.state.clone()}
	if err := fn(w); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = w.state
	return nil
}

// GetDocumentByPath retrieves a document by its corpus path.
func (s *CorpusStore) GetDocumentByPath(_ context.Context, path string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.state.byPath[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc := s.state.documents[id]
	return &doc, nil
}

// Documents returns all documents ordered by path.
func (s *CorpusStore) Documents() []domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]domain.Document, 0, len(s.state.documents))
	for _, d := range s.state.documents {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs
}

// Close is a no-op for the memory store.
func (s *CorpusStore) Close() error {
	return nil
}

// corpusWriter mutates a transaction's private state. The store's write lock is held.
type corpusWriter struct {
	state corpusState
}

func (w *corpusWriter) UpsertDocument(_ context.Context, doc *domain.Document) error {
	now := time.Now()
	if id, ok := w.state.byPath[doc.Path]; ok {
		existing := w.state.documents[id]
		existing.Title = doc.Title
		existing.Content = doc.Content
		existing.URL = doc.URL
		existing.UpdatedAt = now
		w.state.documents[id] = existing
		*doc = existing
		return nil
	}

	doc.ID = uuid.New().String()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	w.state.documents[doc.ID] = *doc
	w.state.byPath[doc.Path] = doc.ID
	return nil
}

func (w *corpusWriter) UpsertChunks(_ context.Context, documentID string, chunks []domain.EmbeddedChunk) error {
	if _, ok := w.state.documents[documentID]; !ok {
		return domain.ErrNotFound
	}

	// The previous chunk set is dropped, not merged.
	byIndex := make(map[int]domain.Chunk, len(chunks))
	w.state.chunks[documentID] = byIndex
	for _, c := range chunks {
		byIndex[c.Index] = domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: documentID,
			Index:      c.Index,
			Content:    c.Content,
			Embedding:  c.Embedding,
		}
	}
	return nil
}
