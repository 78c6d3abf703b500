package extractors

import (
	"github.com/custodia-labs/doclabel/internal/extractors/docx"
	"github.com/custodia-labs/doclabel/internal/extractors/html"
	"github.com/custodia-labs/doclabel/internal/extractors/pdf"
	"github.com/custodia-labs/doclabel/internal/extractors/plaintext"
	"github.com/custodia-labs/doclabel/internal/extractors/xlsx"
)

// RegisterDefaults registers all built-in extractors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(xlsx.New())
	r.Register(plaintext.New())
	r.Register(html.New())
}

// NewDefaultRegistry returns a registry with the built-in extractors.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}
