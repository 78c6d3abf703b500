package driving

import (
	"context"

	"github.com/custodia-labs/doclabel/internal/core/domain"
)

// ReviewService exposes labels for human review and applies corrections.
type ReviewService interface {
	// ListForReview returns every document joined with its label.
	ListForReview(ctx context.Context) ([]domain.ReviewRow, error)

	// ApplyCorrection validates and stores a human label, clearing the
	// review flag and recording an audit entry.
	ApplyCorrection(ctx context.Context, label domain.Label) error
}
