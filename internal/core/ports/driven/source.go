package driven

import (
	"context"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

// CorpusSource lists and fetches the fixed document set to ingest.
type CorpusSource interface {
	// Name identifies the source in logs (e.g. "github:amasad/jfk_files@main").
	Name() string

	// List returns the markdown files offered by the source.
	List(ctx context.Context) ([]domain.CorpusFile, error)

	// Fetch returns the raw text of a file.
	Fetch(ctx context.Context, file domain.CorpusFile) (string, error)
}
