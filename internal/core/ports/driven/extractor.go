package driven

import "context"

// Extractor turns file bytes into plain text.
//
// Implementations include:
//   - PDF (pdftotext)
//   - Word documents (.docx)
//   - Spreadsheets (.xlsx)
//   - Plain text and HTML
type Extractor interface {
	// Extensions returns the lowercased suffixes handled, e.g. ".pdf".
	Extensions() []string

	// Extract returns the text content of data.
	Extract(ctx context.Context, data []byte) (string, error)
}

// ExtractorRegistry selects the extractor for a file suffix.
type ExtractorRegistry interface {
	// Register adds an extractor for all of its extensions.
	Register(e Extractor)

	// Lookup returns the extractor for suffix.
	Lookup(suffix string) (Extractor, bool)

	// Extensions returns every registered suffix, sorted.
	Extensions() []string
}
