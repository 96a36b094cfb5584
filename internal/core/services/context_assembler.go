package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// DefaultNeighborRadius is how many chunks on each side of a hit are included as context.
const DefaultNeighborRadius = 1

// ContextSeparator divides context blocks in the prompt.
const ContextSeparator = "\n\n---\n\n"

// ContextAssembler expands search results into prompt-ready context blocks.
type ContextAssembler struct {
	reader driven.NeighborReader
	radius int
}

// NewContextAssembler creates an assembler reading neighbors from reader.
func NewContextAssembler(reader driven.NeighborReader) *ContextAssembler {
	return &ContextAssembler{
		reader: reader,
		radius: DefaultNeighborRadius,
	}
}

// Assemble returns one block per result, in the order given.
// Each block holds the hit and its neighbors from the same document.
// Results sharing neighbors are not deduplicated.
func (a *ContextAssembler) Assemble(ctx context.Context, results []domain.SearchResult) ([]string, error) {
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		neighbors, err := a.reader.NeighborChunks(ctx, r.Chunk.DocumentID, r.Chunk.Index, a.radius)
		if err != nil {
			return nil, fmt.Errorf("read neighbors of %s#%d: %w", r.Document.Path, r.Chunk.Index, err)
		}
		if len(neighbors) == 0 {
			neighbors = []domain.Chunk{r.Chunk}
		}
		blocks = append(blocks, FormatBlock(r.Document.Title, r.Similarity, neighbors, r.Document.URL))
	}
	return blocks, nil
}

// FormatBlock renders a context block:
//
//	From {title} (Similarity: {0.00}):
//
//	{chunk}\n\n{chunk}...
//
//	Source: {url}
func FormatBlock(title string, similarity float64, chunks []domain.Chunk, url string) string {
	contents := make([]string, 0, len(chunks))
	for _, c := range chunks {
		contents = append(contents, c.Content)
	}
	return fmt.Sprintf("From %s (Similarity: %.2f):\n\n%s\n\nSource: %s",
		title, similarity, strings.Join(contents, "\n\n"), url)
}

// JoinContext joins blocks into the final context string.
func JoinContext(blocks []string) string {
	return strings.Join(blocks, ContextSeparator)
}
