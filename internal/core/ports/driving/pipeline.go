package driving

import (
	"context"

	"github.com/custodia-labs/doclabel/internal/core/domain"
)

// Pipeline runs crawl, extraction and both classifiers in order.
type Pipeline interface {
	RunAll(ctx context.Context, roots []domain.FolderRef) (*PipelineReport, error)
}

// PipelineReport collects the per-stage reports. Stages after a failure
// are nil.
type PipelineReport struct {
	Crawl     *CrawlReport
	Extract   *ExtractReport
	Heuristic *ClassifyReport
	Assisted  *ClassifyReport
}
