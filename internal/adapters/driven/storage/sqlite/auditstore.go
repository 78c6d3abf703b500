package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/doclabel/internal/core/domain"
)

// AppendAudit adds an audit entry, assigning an id and timestamp when unset.
func (s *documentStore) AppendAudit(ctx context.Context, entry domain.AuditEntry) error {
	if entry.FileID == "" || entry.Field == "" {
		return fmt.Errorf("%w: audit entry needs a file id and field", domain.ErrInvalidInput)
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Actor == "" {
		entry.Actor = domain.ActorPipeline
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO audit (id, file_id, field, old_value, new_value, actor, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.FileID, entry.Field, entry.OldValue, entry.NewValue, entry.Actor, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving audit entry: %w", err)
	}
	return nil
}

// ListAudit returns audit entries, oldest first.
func (s *documentStore) ListAudit(ctx context.Context, fileID string, limit int) ([]domain.AuditEntry, error) {
	query := "SELECT id, file_id, field, old_value, new_value, actor, created_at FROM audit"
	var args []any
	if fileID != "" {
		query += " WHERE file_id = ?"
		args = append(args, fileID)
	}
	query += " ORDER BY created_at, rowid"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var e domain.AuditEntry
		var createdAt sql.NullTime
		if err := rows.Scan(&e.ID, &e.FileID, &e.Field, &e.OldValue, &e.NewValue, &e.Actor, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		if createdAt.Valid {
			e.CreatedAt = createdAt.Time
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit: %w", err)
	}
	return entries, nil
}

// Stats summarises the inventory.
func (s *documentStore) Stats(ctx context.Context) (*domain.InventoryStats, error) {
	stats := &domain.InventoryStats{BySource: make(map[domain.LabelSource]int)}

	counts := []struct {
		dest  *int
		query string
		args  []any
	}{
		{&stats.Documents, "SELECT COUNT(*) FROM documents", nil},
		{&stats.Pending, "SELECT COUNT(*) FROM documents WHERE excerpt IS NULL", nil},
		{&stats.Extracted, "SELECT COUNT(*) FROM documents WHERE extraction_status = ?", []any{string(domain.OutcomeExtracted)}},
		{&stats.Degraded, "SELECT COUNT(*) FROM documents WHERE extraction_status = ?", []any{string(domain.OutcomeDegraded)}},
		{&stats.Skipped, "SELECT COUNT(*) FROM documents WHERE extraction_status = ?", []any{string(domain.OutcomeSkipped)}},
		{&stats.Labelled, "SELECT COUNT(*) FROM labels", nil},
		{&stats.NeedsReview, "SELECT COUNT(*) FROM labels WHERE needs_review = 1", nil},
		{&stats.Synced, "SELECT COUNT(*) FROM labels WHERE synced_hash != ''", nil},
		{&stats.AuditEvents, "SELECT COUNT(*) FROM audit", nil},
	}
	for _, c := range counts {
		if err := s.store.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("counting inventory: %w", err)
		}
	}

	rows, err := s.store.db.QueryContext(ctx, "SELECT source, COUNT(*) FROM labels GROUP BY source")
	if err != nil {
		return nil, fmt.Errorf("counting label sources: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return nil, fmt.Errorf("scanning label sources: %w", err)
		}
		stats.BySource[domain.LabelSource(source)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating label sources: %w", err)
	}
	return stats, nil
}
