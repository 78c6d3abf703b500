package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/core/ports/driven"
	"github.com/custodia-labs/doclabel/internal/core/ports/driving"
	"github.com/custodia-labs/doclabel/internal/logger"
)

// Ensure ExtractionService implements the interface.
var _ driving.ExtractionService = (*ExtractionService)(nil)

// DefaultExcerptMaxChars bounds stored excerpts when no limit is configured.
const DefaultExcerptMaxChars = 15000

// ExtractionService downloads documents and stores bounded text excerpts.
type ExtractionService struct {
	store    driven.DocumentStore
	drive    driven.RemoteDrive
	registry driven.ExtractorRegistry
	maxChars int
}

// NewExtractionService creates an extraction service. A non-positive
// maxChars falls back to DefaultExcerptMaxChars.
func NewExtractionService(
	store driven.DocumentStore,
	drive driven.RemoteDrive,
	registry driven.ExtractorRegistry,
	maxChars int,
) *ExtractionService {
	if maxChars <= 0 {
		maxChars = DefaultExcerptMaxChars
	}
	return &ExtractionService{
		store:    store,
		drive:    drive,
		registry: registry,
		maxChars: maxChars,
	}
}

// ExtractPending processes every document without an excerpt. Parser
// failures are recorded per document and never stop the run; a download
// failure aborts it, leaving earlier documents stored.
func (s *ExtractionService) ExtractPending(ctx context.Context) (*driving.ExtractReport, error) {
	docs, err := s.store.ListMissingExcerpt(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending documents: %w", err)
	}

	logger.Section("extract")
	report := &driving.ExtractReport{}
	unavailable := make(map[string]bool)

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		data, err := s.drive.Download(ctx, doc.FileID)
		if err != nil {
			return report, fmt.Errorf("download %s (%s): %w", doc.Path, doc.FileID, err)
		}
		sum := sha256.Sum256(data)
		fileHash := hex.EncodeToString(sum[:])

		result := s.extract(ctx, doc, data)
		if errors.Is(result.Err, domain.ErrExtractorUnavailable) {
			if !unavailable[doc.Suffix] {
				logger.Warn("Skipping %s files: %v", doc.Suffix, result.Err)
				unavailable[doc.Suffix] = true
			}
			report.MissingTool++
		}

		if err := s.store.StoreExcerpt(ctx, doc.FileID, result.Record(fileHash)); err != nil {
			return report, fmt.Errorf("store excerpt %s: %w", doc.FileID, err)
		}

		report.Processed++
		switch result.Outcome {
		case domain.OutcomeExtracted:
			report.Extracted++
		case domain.OutcomeDegraded:
			report.Degraded++
			logger.Warn("Extraction degraded for %s: %v", doc.Path, result.Err)
		case domain.OutcomeSkipped:
			report.Skipped++
			logger.Debug("Skipped %s", doc.Path)
		}
		logger.Progress("extract", i+1, len(docs), 25)
	}

	logger.Info("Extraction complete: %d extracted, %d degraded, %d skipped",
		report.Extracted, report.Degraded, report.Skipped)
	return report, nil
}

// RetrySkipped resets documents whose extractor could not run so the next
// ExtractPending downloads them again. Documents of unsupported types stay
// skipped.
func (s *ExtractionService) RetrySkipped(ctx context.Context) (int, error) {
	n, err := s.store.ResetSkipped(ctx)
	if err != nil {
		return 0, fmt.Errorf("reset skipped documents: %w", err)
	}
	logger.Info("Reset %d skipped documents for extraction", n)
	return n, nil
}

// extract runs the extractor for the document's suffix. Panics inside a
// parser are reported as degraded results.
func (s *ExtractionService) extract(ctx context.Context, doc domain.Document, data []byte) (result domain.ExtractionResult) {
	ext, ok := s.registry.Lookup(doc.Suffix)
	if !ok {
		return domain.Skipped()
	}

	defer func() {
		if r := recover(); r != nil {
			result = domain.Degraded(fmt.Errorf("%w: parser panic: %v", domain.ErrExtractionFailed, r))
		}
	}()

	text, err := ext.Extract(ctx, data)
	if err != nil {
		if errors.Is(err, domain.ErrExtractorUnavailable) {
			return domain.ExtractionResult{Outcome: domain.OutcomeSkipped, Err: err}
		}
		return domain.Degraded(err)
	}
	return domain.Extracted(domain.TruncateRunes(text, s.maxChars))
}
