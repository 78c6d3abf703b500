package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/core/ports/driven"
	"github.com/custodia-labs/doclabel/internal/core/ports/driving"
	"github.com/custodia-labs/doclabel/internal/logger"
)

// Ensure ReviewService implements the interface.
var _ driving.ReviewService = (*ReviewService)(nil)

// ReviewService applies human corrections.
type ReviewService struct {
	store    driven.DocumentStore
	taxonomy *domain.Taxonomy
	now      func() time.Time
}

// NewReviewService creates a review service.
func NewReviewService(store driven.DocumentStore, taxonomy *domain.Taxonomy) *ReviewService {
	return &ReviewService{
		store:    store,
		taxonomy: taxonomy,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ListForReview returns every document joined with its label, ordered by path.
func (s *ReviewService) ListForReview(ctx context.Context) ([]domain.ReviewRow, error) {
	rows, err := s.store.ListJoined(ctx)
	if err != nil {
		return nil, fmt.Errorf("list for review: %w", err)
	}
	return rows, nil
}

// ApplyCorrection validates label and stores it as a human label. The
// previous label is recorded in the audit log.
func (s *ReviewService) ApplyCorrection(ctx context.Context, label domain.Label) error {
	label.FileID = strings.TrimSpace(label.FileID)
	if label.FileID == "" {
		return fmt.Errorf("%w: correction without file id", domain.ErrInvalidInput)
	}

	if err := label.Validate(); err != nil {
		return err
	}

	if _, err := s.store.GetDocument(ctx, label.FileID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: document %s", domain.ErrNotFound, label.FileID)
		}
		return fmt.Errorf("get document %s: %w", label.FileID, err)
	}

	previous, err := s.store.GetLabel(ctx, label.FileID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("get label %s: %w", label.FileID, err)
	}

	for _, field := range domain.EnumFields() {
		if value := label.Get(field); !s.taxonomy.Allows(field, value) {
			logger.Warn("%s: %s=%q is not in the taxonomy", label.FileID, field, value)
		}
	}

	label.Keywords = domain.JoinKeywords(domain.ParseKeywords(label.Keywords))
	label.ApplyDefaults(s.taxonomy.LabelDefaults())
	label.Source = domain.SourceHuman
	label.Confidence = domain.HumanConfidence
	label.NeedsReview = false
	label.UpdatedAt = s.now()

	if err := s.store.UpsertLabel(ctx, label); err != nil {
		return fmt.Errorf("save label %s: %w", label.FileID, err)
	}

	entry := domain.AuditEntry{
		FileID:    label.FileID,
		Field:     domain.AuditFieldReview,
		NewValue:  encodeValues(label.Values()),
		Actor:     domain.ActorHuman,
		CreatedAt: label.UpdatedAt,
	}
	if previous != nil {
		entry.OldValue = encodeValues(previous.Values())
	}
	if err := s.store.AppendAudit(ctx, entry); err != nil {
		return fmt.Errorf("audit review %s: %w", label.FileID, err)
	}
	return nil
}

// encodeValues renders values as JSON with sorted keys.
func encodeValues(values any) string {
	data, err := json.Marshal(values)
	if err != nil {
		return ""
	}
	return string(data)
}
