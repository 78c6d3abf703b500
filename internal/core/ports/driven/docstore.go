package driven

import (
	"context"

	"github.com/custodia-labs/doclabel/internal/core/domain"
)

// DocumentStore persists the inventory, labels and audit log.
type DocumentStore interface {
	// UpsertDocument inserts or updates crawl metadata. Excerpt, hash and
	// extraction status of an existing row are preserved.
	UpsertDocument(ctx context.Context, doc domain.Document) error

	// MarkSeen stamps the last-seen time of a document.
	MarkSeen(ctx context.Context, fileID string) error

	// GetDocument retrieves a document by file id.
	GetDocument(ctx context.Context, fileID string) (*domain.Document, error)

	// ListMissingExcerpt returns documents extraction has not run for.
	ListMissingExcerpt(ctx context.Context) ([]domain.Document, error)

	// StoreExcerpt records an extraction result.
	StoreExcerpt(ctx context.Context, fileID string, rec domain.ExtractionRecord) error

	// ResetSkipped clears the extraction result of documents skipped with
	// an error, so the next run extracts them again. Returns the number of
	// documents reset.
	ResetSkipped(ctx context.Context) (int, error)

	// ListForHeuristics returns documents that have an excerpt and no
	// label, or a label without a source.
	ListForHeuristics(ctx context.Context) ([]domain.Document, error)

	// ListForAssisted returns heuristically labelled documents missing any
	// required field or below the confidence threshold.
	ListForAssisted(ctx context.Context, required []string, threshold float64) ([]domain.Document, error)

	// UpsertLabel writes a full label row. NeedsReview is forced true for
	// every source except human.
	UpsertLabel(ctx context.Context, label domain.Label) error

	// GetLabel retrieves the label of a document.
	GetLabel(ctx context.Context, fileID string) (*domain.Label, error)

	// ListJoined returns every document with its label, ordered by path.
	ListJoined(ctx context.Context) ([]domain.ReviewRow, error)

	// ListForSync returns labelled documents with the review flag cleared.
	ListForSync(ctx context.Context) ([]domain.SyncRow, error)

	// MarkSynced records the payload hash last written to the drive.
	MarkSynced(ctx context.Context, fileID, payloadHash string) error

	// AppendAudit adds an audit entry.
	AppendAudit(ctx context.Context, entry domain.AuditEntry) error

	// ListAudit returns audit entries, oldest first. An empty fileID
	// returns entries for all documents.
	ListAudit(ctx context.Context, fileID string, limit int) ([]domain.AuditEntry, error)

	// Stats summarises the inventory.
	Stats(ctx context.Context) (*domain.InventoryStats, error)

	// Close releases the underlying resources.
	Close() error
}
