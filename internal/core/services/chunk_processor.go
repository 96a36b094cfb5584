package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/dossier/internal/chunker"
	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/logger"
)

// Limiter paces outbound provider calls. *rate.Limiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// ChunkProcessor turns a document's text into embedded chunks.
type ChunkProcessor struct {
	splitter *chunker.Splitter
	embedder driven.EmbeddingService
	limiter  Limiter
}

// NewChunkProcessor creates a processor that splits with splitter and embeds with embedder.
// The embedder is expected to be dimension-guarded.
func NewChunkProcessor(splitter *chunker.Splitter, embedder driven.EmbeddingService) *ChunkProcessor {
	if splitter == nil {
		splitter = chunker.New()
	}
	return &ChunkProcessor{
		splitter: splitter,
		embedder: embedder,
	}
}

// SetLimiter throttles embedding calls. A nil limiter disables throttling.
func (p *ChunkProcessor) SetLimiter(l Limiter) {
	p.limiter = l
}

// Process splits text and embeds every chunk sequentially in index order.
// The first failure aborts the document; no partial result is returned.
func (p *ChunkProcessor) Process(ctx context.Context, text string) ([]domain.EmbeddedChunk, error) {
	candidates := p.splitter.Split(text)
	logger.Debug("Split into %d chunks", len(candidates))

	embedded := make([]domain.EmbeddedChunk, 0, len(candidates))
	for _, c := range candidates {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("wait for rate limiter: %w", err)
			}
		}

		vec, err := p.embedder.Embed(ctx, c.Content)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", c.Index, err)
		}

		embedded = append(embedded, domain.EmbeddedChunk{
			Index:     c.Index,
			Content:   c.Content,
			Embedding: vec,
		})
	}

	return embedded, nil
}
