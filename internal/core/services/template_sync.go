package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/core/ports/driven"
	"github.com/custodia-labs/doclabel/internal/core/ports/driving"
	"github.com/custodia-labs/doclabel/internal/logger"
)

// Ensure TemplateSyncer implements the interface.
var _ driving.TemplateSyncer = (*TemplateSyncer)(nil)

// TemplateSyncer writes reviewed labels to the drive's metadata template.
type TemplateSyncer struct {
	store  driven.DocumentStore
	drive  driven.RemoteDrive
	marker driven.TemplateMarker
	def    domain.TemplateDefinition
	now    func() time.Time

	templateID string
}

// NewTemplateSyncer creates a syncer for the taxonomy's template. A
// taxonomy without a template uses the default one.
func NewTemplateSyncer(
	store driven.DocumentStore,
	drive driven.RemoteDrive,
	marker driven.TemplateMarker,
	taxonomy *domain.Taxonomy,
) *TemplateSyncer {
	def := domain.DefaultTemplate()
	if taxonomy != nil && len(taxonomy.Template.Fields) > 0 {
		def = taxonomy.Template
	}
	return &TemplateSyncer{
		store:  store,
		drive:  drive,
		marker: marker,
		def:    def.Expand(taxonomy),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// EnsureTemplate returns the template id, creating the template and
// persisting the marker when none is stored.
func (s *TemplateSyncer) EnsureTemplate(ctx context.Context) (string, error) {
	if s.templateID != "" {
		return s.templateID, nil
	}

	id, err := s.marker.Load()
	if err != nil {
		return "", fmt.Errorf("read template marker: %w", err)
	}
	if id != "" {
		s.templateID = id
		return id, nil
	}

	logger.Info("Creating metadata template %q with %d fields", s.def.Name, len(s.def.Fields))
	id, err = s.drive.CreateTemplate(ctx, s.def)
	if err != nil {
		return "", fmt.Errorf("create template: %w", err)
	}
	if err := s.marker.Save(id); err != nil {
		return "", fmt.Errorf("save template marker: %w", err)
	}
	s.templateID = id
	return id, nil
}

// Sync pushes every reviewed label whose payload changed since the last
// sync and records an audit entry per file written.
func (s *TemplateSyncer) Sync(ctx context.Context) (*driving.SyncReport, error) {
	rows, err := s.store.ListForSync(ctx)
	if err != nil {
		return nil, fmt.Errorf("list labels for sync: %w", err)
	}

	logger.Section("sync")
	report := &driving.SyncReport{Considered: len(rows)}

	templateID, err := s.EnsureTemplate(ctx)
	if err != nil {
		return report, err
	}
	report.TemplateID = templateID

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		values := s.def.Payload(row.Label)
		if len(values) == 0 {
			report.Empty++
			continue
		}
		payload := payloadJSON(values)
		hash := payloadHash(payload)
		if hash == row.Label.SyncedHash {
			report.Unchanged++
			continue
		}

		fileID := row.Document.FileID
		if err := s.drive.UpdateMetadata(ctx, fileID, templateID, values); err != nil {
			return report, fmt.Errorf("update metadata %s (%s): %w", row.Document.Path, fileID, err)
		}
		if err := s.store.AppendAudit(ctx, domain.AuditEntry{
			FileID:    fileID,
			Field:     domain.AuditFieldSync,
			NewValue:  payload,
			Actor:     domain.ActorPipeline,
			CreatedAt: s.now(),
		}); err != nil {
			return report, fmt.Errorf("audit sync %s: %w", fileID, err)
		}
		if err := s.store.MarkSynced(ctx, fileID, hash); err != nil {
			return report, fmt.Errorf("mark synced %s: %w", fileID, err)
		}
		report.Synced++
		logger.Progress("sync", i+1, len(rows), 25)
	}

	logger.Info("Sync complete: %d written, %d unchanged, %d empty",
		report.Synced, report.Unchanged, report.Empty)
	return report, nil
}

// payloadJSON renders values as a JSON object keyed by field label.
func payloadJSON(values []domain.MetadataValue) string {
	m := make(map[string]string, len(values))
	for _, v := range values {
		m[v.Label] = v.Value
	}
	return encodeValues(m)
}

func payloadHash(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
