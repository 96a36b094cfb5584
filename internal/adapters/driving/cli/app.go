package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/dossier/internal/adapters/driven/ai"
	"github.com/custodia-labs/dossier/internal/adapters/driven/config/file"
	"github.com/custodia-labs/dossier/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/dossier/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/dossier/internal/chunker"
	"github.com/custodia-labs/dossier/internal/connectors/filesystem"
	"github.com/custodia-labs/dossier/internal/connectors/github"
	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/core/ports/driving"
	"github.com/custodia-labs/dossier/internal/core/services"
)

// application holds the wired services for one command invocation.
type application struct {
	Questions driving.QuestionService
	Search    driving.SearchService
	Ingest    driving.IngestService

	// Pingers are probed by serve before it starts listening.
	Pingers []ai.Pinger

	closers []io.Closer
}

func (a *application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	// current is the application built for this process, if any.
	current *application

	// buildApp wires the application from settings. Tests replace it.
	buildApp = wire
)

// app returns the wired application, building it on first use.
func app(ctx context.Context) (*application, error) {
	if current != nil {
		return current, nil
	}
	a, err := buildApp(ctx, settings)
	if err != nil {
		return nil, err
	}
	current = a
	return a, nil
}

func closeApp() error {
	if current == nil {
		return nil
	}
	err := current.Close()
	current = nil
	return err
}

func wire(ctx context.Context, s domain.Settings) (*application, error) {
	a := &application{}

	embedder, err := ai.CreateEmbeddingService(s)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, embedder)

	llm, err := ai.CreateLLMService(s)
	if err != nil {
		a.Close() //nolint:errcheck
		return nil, err
	}
	a.closers = append(a.closers, llm)
	a.Pingers = []ai.Pinger{embedder, llm}

	store, err := openStore(ctx, s)
	if err != nil {
		a.Close() //nolint:errcheck
		return nil, err
	}
	a.closers = append(a.closers, store)

	source, err := openSource(ctx, s)
	if err != nil {
		a.Close() //nolint:errcheck
		return nil, err
	}

	splitter := chunker.New(
		chunker.WithChunkSize(s.Chunking.Size),
		chunker.WithOverlap(s.Chunking.Overlap),
	)
	processor := services.NewChunkProcessor(splitter, embedder)
	if s.AI.RequestsPerSecond > 0 {
		processor.SetLimiter(rate.NewLimiter(rate.Limit(s.AI.RequestsPerSecond), 1))
	}

	questions := services.NewQuestionService(
		embedder,
		llm,
		services.NewSimilaritySearch(store, s.Search),
		services.NewContextAssembler(store),
	)
	questions.SetChatOptions(driven.ChatOptions{
		MaxTokens:   s.AI.MaxTokens,
		Temperature: s.AI.Temperature,
	})

	dir, err := promptDir()
	if err != nil {
		a.Close() //nolint:errcheck
		return nil, err
	}
	prompts, err := file.NewPromptStore(dir)
	if err != nil {
		a.Close() //nolint:errcheck
		return nil, fmt.Errorf("open prompts: %w", err)
	}
	questions.SetPromptStore(prompts)

	a.Questions = questions
	a.Search = questions
	a.Ingest = services.NewIngestService(store, source, processor)
	return a, nil
}

func openStore(ctx context.Context, s domain.Settings) (driven.CorpusStore, error) {
	switch s.Storage.Driver {
	case domain.StoragePostgres:
		store, err := postgres.NewStore(ctx, postgres.Config{
			DatabaseURL:  s.Storage.DatabaseURL,
			Dimensions:   s.Embedding.Dimensions,
			MaxOpenConns: s.Storage.MaxOpenConns,
		})
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, nil
	default:
		store, err := sqlite.NewStore(s.Storage.DataDir)
		if err != nil {
			return nil, fmt.Errorf("%w: open sqlite store: %w", domain.ErrStoreUnavailable, err)
		}
		store.SetMaxOpenConns(s.Storage.MaxOpenConns)
		return store, nil
	}
}

// openSource prefers a local checkout when corpus.dir is set.
func openSource(ctx context.Context, s domain.Settings) (driven.CorpusSource, error) {
	c := s.Corpus
	if c.Dir != "" {
		baseURL := fmt.Sprintf("https://github.com/%s/%s/blob/%s", c.Owner, c.Repo, c.Branch)
		src, err := filesystem.NewSource(c.Dir, filesystem.WithBaseURL(baseURL))
		if err != nil {
			return nil, err
		}
		return src, nil
	}

	client, err := github.NewClient(ctx, github.ClientConfig{Token: c.GitHubToken})
	if err != nil {
		return nil, fmt.Errorf("create github client: %w", err)
	}
	src, err := github.NewSource(client, github.Config{Owner: c.Owner, Repo: c.Repo, Branch: c.Branch})
	if err != nil {
		return nil, fmt.Errorf("create github source: %w", err)
	}
	return src, nil
}
