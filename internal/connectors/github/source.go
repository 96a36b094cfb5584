package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.CorpusSource = (*Source)(nil)

// markdownExt selects corpus files. The match is case-sensitive.
const markdownExt = ".md"

// Config locates the repository branch to ingest.
type Config struct {
	Owner  string
	Repo   string
	Branch string
}

// Validate reports whether all fields are set.
func (c Config) Validate() error {
	if c.Owner == "" || c.Repo == "" || c.Branch == "" {
		return ErrInvalidConfig
	}
	return nil
}

// Source lists and downloads the markdown files of one branch.
type Source struct {
	client *Client
	cfg    Config
}

// NewSource creates a GitHub corpus source.
func NewSource(client *Client, cfg Config) (*Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Source{client: client, cfg: cfg}, nil
}

// Name identifies the source in logs.
func (s *Source) Name() string {
	return fmt.Sprintf("github:%s/%s@%s", s.cfg.Owner, s.cfg.Repo, s.cfg.Branch)
}

// List returns every blob ending in .md, in tree order.
func (s *Source) List(ctx context.Context) ([]domain.CorpusFile, error) {
	tree, err := s.client.GetTree(ctx, s.cfg.Owner, s.cfg.Repo, s.cfg.Branch)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s/%s@%s", ErrRepoNotFound, s.cfg.Owner, s.cfg.Repo, s.cfg.Branch)
		}
		return nil, err
	}
	if tree.GetTruncated() {
		logger.Warn("GitHub truncated the tree for %s; some files will be missing", s.Name())
	}

	var files []domain.CorpusFile
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" || !strings.HasSuffix(entry.GetPath(), markdownExt) {
			continue
		}
		files = append(files, domain.CorpusFile{
			Path: entry.GetPath(),
			URL:  s.BlobURL(entry.GetPath()),
		})
	}
	logger.Debug("%s: %d of %d tree entries are markdown", s.Name(), len(files), len(tree.Entries))
	return files, nil
}

// Fetch downloads a file's raw text.
func (s *Source) Fetch(ctx context.Context, file domain.CorpusFile) (string, error) {
	return s.client.GetRaw(ctx, s.cfg.Owner, s.cfg.Repo, s.cfg.Branch, file.Path)
}

// BlobURL returns the github.com page for path.
func (s *Source) BlobURL(path string) string {
	return fmt.Sprintf("https://github.com/%s/%s/blob/%s/%s", s.cfg.Owner, s.cfg.Repo, s.cfg.Branch, path)
}
