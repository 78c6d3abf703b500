// Package memory provides an in-memory document store for tests and dry runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	labels    map[string]domain.Label
	audit     []domain.AuditEntry
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		labels:    make(map[string]domain.Label),
	}
}

// UpsertDocument stores crawl metadata, keeping extraction fields.
func (s *DocumentStore) UpsertDocument(_ context.Context, doc domain.Document) error {
	if doc.FileID == "" {
		return fmt.Errorf("%w: document without file id", domain.ErrInvalidInput)
	}
	if doc.LastSeen.IsZero() {
		doc.LastSeen = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.documents[doc.FileID]; ok {
		doc.Excerpt = existing.Excerpt
		doc.SHA256 = existing.SHA256
		doc.ExtractionStatus = existing.ExtractionStatus
		doc.ExtractionError = existing.ExtractionError
	} else {
		doc.Excerpt = nil
		doc.SHA256 = ""
		doc.ExtractionStatus = ""
		doc.ExtractionError = ""
	}
	s.documents[doc.FileID] = doc
	return nil
}

// MarkSeen stamps the last-seen time.
func (s *DocumentStore) MarkSeen(_ context.Context, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[fileID]
	if !ok {
		return fmt.Errorf("document %s: %w", fileID, domain.ErrNotFound)
	}
	doc.LastSeen = time.Now().UTC()
	s.documents[fileID] = doc
	return nil
}

// GetDocument retrieves a document by file id.
func (s *DocumentStore) GetDocument(_ context.Context, fileID string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[fileID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListMissingExcerpt returns documents extraction has not run for.
func (s *DocumentStore) ListMissingExcerpt(_ context.Context) ([]domain.Document, error) {
	return s.filter(func(d domain.Document, _ *domain.Label) bool {
		return d.Excerpt == nil
	}), nil
}

// StoreExcerpt records an extraction result.
func (s *DocumentStore) StoreExcerpt(_ context.Context, fileID string, rec domain.ExtractionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[fileID]
	if !ok {
		return fmt.Errorf("document %s: %w", fileID, domain.ErrNotFound)
	}
	excerpt := rec.Excerpt
	doc.Excerpt = &excerpt
	doc.SHA256 = rec.SHA256
	doc.ExtractionStatus = rec.Outcome
	doc.ExtractionError = rec.Error
	s.documents[fileID] = doc
	return nil
}

// ResetSkipped clears extraction results of documents skipped with an error.
func (s *DocumentStore) ResetSkipped(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, doc := range s.documents {
		if doc.ExtractionStatus != domain.OutcomeSkipped || doc.ExtractionError == "" {
			continue
		}
		doc.Excerpt = nil
		doc.SHA256 = ""
		doc.ExtractionStatus = ""
		doc.ExtractionError = ""
		s.documents[id] = doc
		n++
	}
	return n, nil
}

// ListForHeuristics returns extracted documents without a labelled source.
func (s *DocumentStore) ListForHeuristics(_ context.Context) ([]domain.Document, error) {
	return s.filter(func(d domain.Document, l *domain.Label) bool {
		return d.Excerpt != nil && (l == nil || l.Source == "")
	}), nil
}

// ListForAssisted returns heuristic labels that need escalation.
func (s *DocumentStore) ListForAssisted(
	_ context.Context,
	required []string,
	threshold float64,
) ([]domain.Document, error) {
	for _, field := range required {
		if !domain.IsLabelField(field) {
			return nil, fmt.Errorf("%w: unknown label field %q", domain.ErrInvalidInput, field)
		}
	}
	return s.filter(func(_ domain.Document, l *domain.Label) bool {
		if l == nil || l.Source != domain.SourceHeuristic {
			return false
		}
		return l.MissingAny(required) || l.Confidence < threshold
	}), nil
}

// UpsertLabel writes a full label row, preserving the synced hash.
func (s *DocumentStore) UpsertLabel(_ context.Context, label domain.Label) error {
	if label.FileID == "" {
		return fmt.Errorf("%w: label without file id", domain.ErrInvalidInput)
	}
	if !label.Source.IsValid() {
		return fmt.Errorf("%w: unknown label source %q", domain.ErrInvalidInput, label.Source)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[label.FileID]; !ok {
		return fmt.Errorf("document %s: %w", label.FileID, domain.ErrNotFound)
	}
	label.NeedsReview = label.Source != domain.SourceHuman
	if label.UpdatedAt.IsZero() {
		label.UpdatedAt = time.Now().UTC()
	}
	label.SyncedHash = s.labels[label.FileID].SyncedHash
	s.labels[label.FileID] = label
	return nil
}

// GetLabel retrieves the label of a document.
func (s *DocumentStore) GetLabel(_ context.Context, fileID string) (*domain.Label, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	label, ok := s.labels[fileID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &label, nil
}

// ListJoined returns every document with its label, ordered by path.
func (s *DocumentStore) ListJoined(_ context.Context) ([]domain.ReviewRow, error) {
	docs := s.filter(func(domain.Document, *domain.Label) bool { return true })
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ReviewRow, 0, len(docs))
	for _, d := range docs {
		row := domain.ReviewRow{Document: d}
		if l, ok := s.labels[d.FileID]; ok {
			row.Label = &l
		}
		out = append(out, row)
	}
	return out, nil
}

// ListForSync returns labelled documents whose review flag is cleared.
func (s *DocumentStore) ListForSync(_ context.Context) ([]domain.SyncRow, error) {
	docs := s.filter(func(_ domain.Document, l *domain.Label) bool { return l != nil && !l.NeedsReview })
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SyncRow, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.SyncRow{Document: d, Label: s.labels[d.FileID]})
	}
	return out, nil
}

// MarkSynced records the payload hash last written to the drive.
func (s *DocumentStore) MarkSynced(_ context.Context, fileID, payloadHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	label, ok := s.labels[fileID]
	if !ok {
		return fmt.Errorf("document %s: %w", fileID, domain.ErrNotFound)
	}
	label.SyncedHash = payloadHash
	s.labels[fileID] = label
	return nil
}

// AppendAudit adds an audit entry.
func (s *DocumentStore) AppendAudit(_ context.Context, entry domain.AuditEntry) error {
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
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, entry)
	return nil
}

// ListAudit returns audit entries in insertion order.
func (s *DocumentStore) ListAudit(_ context.Context, fileID string, limit int) ([]domain.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.AuditEntry
	for _, e := range s.audit {
		if fileID != "" && e.FileID != fileID {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Stats summarises the inventory.
func (s *DocumentStore) Stats(_ context.Context) (*domain.InventoryStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &domain.InventoryStats{
		Documents:   len(s.documents),
		Labelled:    len(s.labels),
		AuditEvents: len(s.audit),
		BySource:    make(map[domain.LabelSource]int),
	}
	for _, d := range s.documents {
		if d.Excerpt == nil {
			stats.Pending++
			continue
		}
		switch d.ExtractionStatus {
		case domain.OutcomeExtracted:
			stats.Extracted++
		case domain.OutcomeDegraded:
			stats.Degraded++
		case domain.OutcomeSkipped:
			stats.Skipped++
		}
	}
	for _, l := range s.labels {
		stats.BySource[l.Source]++
		if l.NeedsReview {
			stats.NeedsReview++
		}
		if l.SyncedHash != "" {
			stats.Synced++
		}
	}
	return stats, nil
}

// Close is a no-op.
func (s *DocumentStore) Close() error {
	return nil
}

// filter returns matching documents ordered by path, then file id.
func (s *DocumentStore) filter(keep func(domain.Document, *domain.Label) bool) []domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Document
	for _, d := range s.documents {
		var label *domain.Label
		if l, ok := s.labels[d.FileID]; ok {
			label = &l
		}
		if keep(d, label) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].FileID < out[j].FileID
	})
	return out
}
