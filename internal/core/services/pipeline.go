package services

import (
	"context"

	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/core/ports/driving"
	"github.com/custodia-labs/doclabel/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.Pipeline = (*Pipeline)(nil)

// Pipeline runs the automatic stages in order: crawl, extract, heuristic
// and assisted classification. Review and sync stay manual.
type Pipeline struct {
	crawler   driving.Crawler
	extractor driving.ExtractionService
	heuristic driving.Classifier
	assisted  driving.Classifier
}

// NewPipeline creates a pipeline from its stages.
func NewPipeline(
	crawler driving.Crawler,
	extractor driving.ExtractionService,
	heuristic driving.Classifier,
	assisted driving.Classifier,
) *Pipeline {
	return &Pipeline{
		crawler:   crawler,
		extractor: extractor,
		heuristic: heuristic,
		assisted:  assisted,
	}
}

// RunAll runs every stage to completion before starting the next. The
// first failing stage stops the run; its partial report is kept.
func (p *Pipeline) RunAll(ctx context.Context, roots []domain.FolderRef) (*driving.PipelineReport, error) {
	report := &driving.PipelineReport{}
	var err error

	if report.Crawl, err = p.crawler.Crawl(ctx, roots); err != nil {
		return report, err
	}
	if report.Extract, err = p.extractor.ExtractPending(ctx); err != nil {
		return report, err
	}
	if report.Heuristic, err = p.heuristic.Classify(ctx); err != nil {
		return report, err
	}
	if report.Assisted, err = p.assisted.Classify(ctx); err != nil {
		return report, err
	}

	logger.Info("Pipeline complete")
	return report, nil
}
