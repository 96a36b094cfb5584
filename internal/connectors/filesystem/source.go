// Package filesystem implements a corpus source over markdown files in a local directory.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.CorpusSource = (*Source)(nil)

const markdownExt = ".md"

// Source walks a directory tree for .md files. Hidden directories are skipped.
type Source struct {
	root    string
	baseURL string
}

// Option configures a Source.
type Option func(*Source)

// WithBaseURL makes each file's URL baseURL + "/" + path instead of a file:// URL.
// Use it when the directory is a checkout of a published repository.
func WithBaseURL(baseURL string) Option {
	return func(s *Source) {
		s.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// NewSource creates a source rooted at dir, which must exist.
func NewSource(dir string, opts ...Option) (*Source, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("open corpus directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open corpus directory: %s is not a directory", abs)
	}

	s := &Source{root: abs}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name identifies the source in logs.
func (s *Source) Name() string {
	return "dir:" + s.root
}

// List returns markdown files in lexical path order, with slash-separated relative paths.
func (s *Source) List(ctx context.Context) ([]domain.CorpusFile, error) {
	var files []domain.CorpusFile
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !strings.HasSuffix(d.Name(), markdownExt) {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		files = append(files, domain.CorpusFile{Path: rel, URL: s.url(rel)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.root, err)
	}
	return files, nil
}

// Fetch reads a listed file. Paths escaping the root are rejected.
func (s *Source) Fetch(_ context.Context, file domain.CorpusFile) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(file.Path))
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is outside the corpus directory", domain.ErrInvalidInput, file.Path)
	}

	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("read %s: %w", file.Path, domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", file.Path, err)
	}
	return string(data), nil
}

func (s *Source) url(rel string) string {
	if s.baseURL != "" {
		return s.baseURL + "/" + rel
	}
	return "file://" + filepath.ToSlash(filepath.Join(s.root, filepath.FromSlash(rel)))
}
