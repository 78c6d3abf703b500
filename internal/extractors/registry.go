package extractors

import (
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/doclabel/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps file suffixes to extractors. A later registration for
// the same suffix replaces the earlier one.
type Registry struct {
	mu     sync.RWMutex
	bySuff map[string]driven.Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{bySuff: make(map[string]driven.Extractor)}
}

// Register adds e for every suffix it handles.
func (r *Registry) Register(e driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range e.Extensions() {
		r.bySuff[normalise(ext)] = e
	}
}

// Lookup returns the extractor for suffix, matched case-insensitively
// with or without the leading dot.
func (r *Registry) Lookup(suffix string) (driven.Extractor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.bySuff[normalise(suffix)]
	return e, ok
}

// Extensions returns the registered suffixes, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.bySuff))
	for ext := range r.bySuff {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func normalise(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
