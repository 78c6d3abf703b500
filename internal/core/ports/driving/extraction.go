package driving

import "context"

// ExtractionService fills in excerpts for documents that have none.
type ExtractionService interface {
	// ExtractPending downloads and extracts every document without an excerpt.
	ExtractPending(ctx context.Context) (*ExtractReport, error)

	// RetrySkipped makes documents skipped because their extractor could
	// not run eligible for extraction again.
	RetrySkipped(ctx context.Context) (int, error)
}

// ExtractReport summarises an extraction run.
type ExtractReport struct {
	Processed int
	Extracted int
	Degraded  int
	Skipped   int

	// MissingTool counts skipped documents whose extractor needs an
	// external tool that is not installed.
	MissingTool int
}
