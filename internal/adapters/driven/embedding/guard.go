// Package embedding holds provider-independent wrappers around driven.EmbeddingService.
package embedding

import (
	"context"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// Ensure Guard implements the interface.
var _ driven.EmbeddingService = (*Guard)(nil)

// Guard rejects vectors whose length differs from the store's canonical dimension.
// Vectors are never truncated or padded.
type Guard struct {
	driven.EmbeddingService
	provider  string
	canonical int
}

// NewGuard wraps svc so every produced vector must have exactly canonical dimensions.
func NewGuard(svc driven.EmbeddingService, provider string, canonical int) *Guard {
	return &Guard{
		EmbeddingService: svc,
		provider:         provider,
		canonical:        canonical,
	}
}

// Embed embeds text and checks the vector length.
func (g *Guard) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := g.EmbeddingService.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := g.check(vec); err != nil {
		return nil, err
	}
	return vec, nil
}

// EmbedBatch embeds texts and checks every vector length.
func (g *Guard) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := g.EmbeddingService.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	for _, v := range vecs {
		if err := g.check(v); err != nil {
			return nil, err
		}
	}
	return vecs, nil
}

// Dimensions returns the canonical dimension enforced by the guard.
func (g *Guard) Dimensions() int {
	return g.canonical
}

// Unwrap returns the guarded service.
func (g *Guard) Unwrap() driven.EmbeddingService {
	return g.EmbeddingService
}

func (g *Guard) check(vec []float32) error {
	if len(vec) == g.canonical {
		return nil
	}
	return &domain.DimensionMismatchError{
		Provider: g.provider,
		Model:    g.EmbeddingService.ModelName(),
		Expected: g.canonical,
		Got:      len(vec),
	}
}
