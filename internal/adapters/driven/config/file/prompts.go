package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// promptExt is appended to a prompt name to form its file name.
const promptExt = ".txt"

// PromptStore loads answer prompts from user-editable files.
//
// Nothing touches disk until the first Load: the directory is created then and
// seeded with driven.DefaultPrompts for any file that does not exist yet.
// If seeding fails, Load serves the built-in defaults.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	defaults  map[string]string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// NewPromptStore creates a prompt store rooted at promptDir.
// An empty promptDir uses ~/.dossier/prompts.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		defaults:  driven.DefaultPrompts(),
		cache:     make(map[string]string),
	}, nil
}

// Load returns the named template, preferring the user's file over the default.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	if s.initErr == nil {
		prompt, err := s.readFile(name)
		if err == nil && prompt != "" {
			s.mu.Lock()
			s.cache[name] = prompt
			s.mu.Unlock()
			return prompt, nil
		}
	}

	if def, ok := s.defaults[name]; ok {
		return def, nil
	}
	if s.initErr != nil {
		return "", fmt.Errorf("load prompt %q: %w", name, s.initErr)
	}
	return "", fmt.Errorf("load prompt %q: %w", name, os.ErrNotExist)
}

// Reload clears the cache so edited files are picked up.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range s.defaults {
		if err := writeIfMissing(filepath.Join(s.promptDir, name+promptExt), content); err != nil {
			s.initErr = fmt.Errorf("seed prompt %q: %w", name, err)
			return
		}
	}

	if err := writeIfMissing(filepath.Join(s.promptDir, "README.md"), promptReadme); err != nil {
		s.initErr = err
	}
}

// readFile returns the trimmed file content for name.
func (s *PromptStore) readFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+promptExt))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func writeIfMissing(path, content string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(content), 0600)
}

const promptReadme = `# dossier prompts

These files control how dossier asks the language model to answer questions.

## Files

- ` + "`answer_system.txt`" + ` - grounding rules sent as the system message
- ` + "`answer_user.txt`" + ` - wraps the retrieved context and the question

## Placeholders

` + "`answer_user.txt`" + ` takes two ` + "`%s`" + ` placeholders: the assembled context first,
then the question. Keep both, in that order.

Delete a file to restore its default on the next run. Edits take effect when
the server or command is restarted.
`
