package services

import (
	"context"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/logger"
)

// Length bounds, in characters, for chunks that keep full length weight.
const (
	minPreferredLength = 100
	maxPreferredLength = 1000
	offLengthWeight    = 0.8
)

// SimilaritySearch retrieves candidate chunks and re-ranks them with position and length heuristics.
type SimilaritySearch struct {
	searcher  driven.ChunkSearcher
	threshold float64
	topK      int
}

// NewSimilaritySearch creates a search over searcher.
// A negative threshold or non-positive top-k falls back to the defaults; a
// threshold of 0 keeps every chunk with positive similarity.
func NewSimilaritySearch(searcher driven.ChunkSearcher, cfg domain.SearchSettings) *SimilaritySearch {
	defaults := domain.DefaultSettings().Search
	if cfg.Threshold < 0 {
		cfg.Threshold = defaults.Threshold
	}
	if cfg.TopK <= 0 {
		cfg.TopK = defaults.TopK
	}
	return &SimilaritySearch{
		searcher:  searcher,
		threshold: cfg.Threshold,
		topK:      cfg.TopK,
	}
}

// TopK returns the default result count.
func (s *SimilaritySearch) TopK() int {
	return s.topK
}

// Search returns at most k results ordered by composite rank descending.
// Only candidates with similarity strictly above the threshold are considered.
// A k of zero or less uses the configured default.
func (s *SimilaritySearch) Search(ctx context.Context, query []float32, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		k = s.topK
	}

	matches, err := s.searcher.MatchChunks(ctx, query, s.threshold)
	if err != nil {
		return nil, fmt.Errorf("match chunks: %w", err)
	}
	logger.Debug("Candidates above %.2f: %d", s.threshold, len(matches))

	results := make([]domain.SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, Score(m))
	}

	SortResults(results)

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// MaxSimilarity returns the best raw similarity across the corpus, ignoring the threshold.
func (s *SimilaritySearch) MaxSimilarity(ctx context.Context, query []float32) (float64, error) {
	maxSim, err := s.searcher.MaxSimilarity(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("max similarity: %w", err)
	}
	return maxSim, nil
}

// Score derives the weights and composite rank for a candidate.
func Score(m domain.ChunkMatch) domain.SearchResult {
	pos := PositionWeight(m.Chunk.Index)
	length := LengthWeight(m.Chunk.Content)
	return domain.SearchResult{
		Document:       m.Document,
		Chunk:          m.Chunk,
		Similarity:     m.Similarity,
		PositionWeight: pos,
		LengthWeight:   length,
		Rank:           m.Similarity * pos * length,
	}
}

// PositionWeight favours chunks near the start of a document.
// It is 1.0 for index 0 and 1/(1+0.1*i) otherwise, strictly decreasing in i.
func PositionWeight(index int) float64 {
	if index <= 0 {
		return 1.0
	}
	return 1.0 / (1.0 + 0.1*float64(index))
}

// LengthWeight is 1.0 for chunks of 100 to 1000 characters inclusive and 0.8 otherwise.
func LengthWeight(content string) float64 {
	n := utf8.RuneCountInString(content)
	if n >= minPreferredLength && n <= maxPreferredLength {
		return 1.0
	}
	return offLengthWeight
}

// SortResults orders results by rank descending.
// Ties go to the higher similarity, then the document path, then the chunk index.
func SortResults(results []domain.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Rank != b.Rank {
			return a.Rank > b.Rank
		}
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		if a.Document.Path != b.Document.Path {
			return a.Document.Path < b.Document.Path
		}
		return a.Chunk.Index < b.Chunk.Index
	})
}
