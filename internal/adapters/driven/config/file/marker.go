package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/doclabel/internal/core/ports/driven"
)

// Ensure TemplateMarker implements the interface.
var _ driven.TemplateMarker = (*TemplateMarker)(nil)

// TemplateMarker stores the created template id as {"id": "..."}.
type TemplateMarker struct {
	mu   sync.Mutex
	path string
}

type markerFile struct {
	ID string `json:"id"`
}

// NewTemplateMarker creates a marker backed by path.
func NewTemplateMarker(path string) *TemplateMarker {
	return &TemplateMarker{path: path}
}

// Load returns the stored id, or "" when the file does not exist.
func (m *TemplateMarker) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading template marker: %w", err)
	}
	var f markerFile
	if err := json.Unmarshal(data, &f); err != nil {
		return "", fmt.Errorf("parsing template marker %s: %w", m.path, err)
	}
	return strings.TrimSpace(f.ID), nil
}

// Save writes the id.
func (m *TemplateMarker) Save(templateID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(m.path), 0700); err != nil {
		return fmt.Errorf("creating marker directory: %w", err)
	}
	data, err := json.Marshal(markerFile{ID: templateID})
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0600)
}

// Path returns the marker file path.
func (m *TemplateMarker) Path() string {
	return m.path
}
