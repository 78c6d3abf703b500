package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/core/ports/driven"
	"github.com/custodia-labs/doclabel/internal/core/ports/driving"
)

// Ensure InventoryService implements the interface.
var _ driving.InventoryService = (*InventoryService)(nil)

// InventoryService reports on the local store.
type InventoryService struct {
	store driven.DocumentStore
}

// NewInventoryService creates an inventory service.
func NewInventoryService(store driven.DocumentStore) *InventoryService {
	return &InventoryService{store: store}
}

// Stats summarises documents, labels and sync state.
func (s *InventoryService) Stats(ctx context.Context) (*domain.InventoryStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("inventory stats: %w", err)
	}
	return stats, nil
}

// Audit returns audit entries, oldest first. A non-positive limit returns
// every entry.
func (s *InventoryService) Audit(ctx context.Context, fileID string, limit int) ([]domain.AuditEntry, error) {
	entries, err := s.store.ListAudit(ctx, fileID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	return entries, nil
}
