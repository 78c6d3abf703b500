package driving

import (
	"context"

	"github.com/custodia-labs/doclabel/internal/core/domain"
)

// InventoryService reports on the local inventory.
type InventoryService interface {
	// Stats summarises documents, labels and sync state.
	Stats(ctx context.Context) (*domain.InventoryStats, error)

	// Audit returns audit entries for a document, or all entries when
	// fileID is empty.
	Audit(ctx context.Context, fileID string, limit int) ([]domain.AuditEntry, error)
}
