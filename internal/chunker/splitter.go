// Package chunker splits document text into overlapping, sentence-aware chunks.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// DefaultSentenceWindow is how far around the target boundary a period is searched for.
const DefaultSentenceWindow = 50

// Splitter cuts text into chunks of roughly chunkSize characters, preferring to end
// each chunk just after a period near the target boundary.
type Splitter struct {
	chunkSize int
	overlap   int
	window    int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// WithSentenceWindow sets how far before and after the target boundary a period may be.
// Zero disables sentence snapping.
func WithSentenceWindow(window int) Option {
	return func(s *Splitter) {
		if window >= 0 {
			s.window = window
		}
	}
}

// New creates a new splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		window:    DefaultSentenceWindow,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// ChunkSize returns the configured chunk size.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split cuts text into trimmed, non-empty chunks indexed from 0.
// Sizes are counted in characters; the result depends only on text and the
// splitter configuration.
func (s *Splitter) Split(text string) []domain.ChunkCandidate {
	if text == "" {
		return nil
	}

	// offsets[i] is the byte offset of rune i; offsets[n] is len(text).
	offsets := make([]int, 0, utf8.RuneCountInString(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	n := len(offsets)
	offsets = append(offsets, len(text))

	chunks := make([]domain.ChunkCandidate, 0, n/(s.chunkSize-s.overlap)+1)
	cursor := 0

	for cursor < n {
		boundary := cursor + s.chunkSize
		if boundary < n {
			boundary = s.snap(text, offsets, cursor, boundary)
		} else {
			boundary = n
		}

		start, end := offsets[cursor], offsets[boundary]
		if content := strings.TrimSpace(text[start:end]); content != "" {
			chunks = append(chunks, domain.ChunkCandidate{
				Index:   len(chunks),
				Content: content,
				Start:   start,
				End:     end,
			})
		}

		if boundary >= n {
			break
		}

		next := boundary - s.overlap
		if next <= cursor {
			// Overlap would stall or rewind the cursor.
			next = boundary
		}
		cursor = next
	}

	return chunks
}

// snap moves boundary just past the first period found in the rune range
// [boundary-window, boundary+window), or leaves it where it is.
func (s *Splitter) snap(text string, offsets []int, cursor, boundary int) int {
	if s.window <= 0 {
		return boundary
	}
	from := boundary - s.window
	if from <= cursor {
		from = cursor + 1
	}
	to := boundary + s.window
	if n := len(offsets) - 1; to > n {
		to = n
	}
	for i := from; i < to; i++ {
		if text[offsets[i]] == '.' {
			return i + 1
		}
	}
	return boundary
}
