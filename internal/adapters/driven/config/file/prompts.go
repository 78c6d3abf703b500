package file

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/doclabel/internal/core/ports/driven"
	"github.com/custodia-labs/doclabel/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// DefaultPromptDir holds the user-editable prompt files.
const DefaultPromptDir = "config/prompts"

const promptExt = ".txt"

//go:embed prompts/*.txt
var builtinPrompts embed.FS

// builtinPrompt returns the prompt shipped in the binary.
func builtinPrompt(name string) (string, bool) {
	data, err := builtinPrompts.ReadFile(path.Join("prompts", name+promptExt))
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// PromptStore serves classification prompts from a directory of .txt
// files. Missing or blank files fall back to the built-in prompt. The
// directory is seeded with the built-ins on first use so they can be
// edited in place.
type PromptStore struct {
	dir string

	seedOnce sync.Once
	seedErr  error

	mu    sync.Mutex
	cache map[string]string
}

// NewPromptStore creates a store over dir, or DefaultPromptDir when empty.
func NewPromptStore(dir string) *PromptStore {
	if dir == "" {
		dir = DefaultPromptDir
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the named prompt, preferring the file on disk.
func (s *PromptStore) Load(name string) (string, error) {
	s.seedOnce.Do(s.seed)

	s.mu.Lock()
	defer s.mu.Unlock()
	if prompt, ok := s.cache[name]; ok {
		return prompt, nil
	}

	prompt, err := s.read(name)
	if prompt == "" {
		builtin, ok := builtinPrompt(name)
		if !ok {
			if err == nil {
				err = os.ErrNotExist
			}
			return "", fmt.Errorf("load prompt %q: %w", name, err)
		}
		prompt = builtin
	}
	s.cache[name] = prompt
	return prompt, nil
}

// Reload drops cached prompts so edits on disk are picked up.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

func (s *PromptStore) read(name string) (string, error) {
	if s.seedErr != nil {
		return "", s.seedErr
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name+promptExt))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// seed writes every built-in prompt that has no file yet.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		s.seedErr = fmt.Errorf("create prompt directory: %w", err)
		logger.Warn("Using built-in prompts: %v", s.seedErr)
		return
	}
	entries, err := fs.ReadDir(builtinPrompts, "prompts")
	if err != nil {
		s.seedErr = err
		return
	}
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), promptExt)
		dst := filepath.Join(s.dir, e.Name())
		if _, err := os.Stat(dst); !errors.Is(err, os.ErrNotExist) {
			continue
		}
		content, _ := builtinPrompt(name)
		if err := os.WriteFile(dst, []byte(content+"\n"), 0o600); err != nil {
			logger.Warn("Could not write default prompt %s: %v", dst, err)
		}
	}
}
