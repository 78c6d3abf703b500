package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/core/ports/driven"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, driven.DocumentStore) {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { _ = store.Close() })

	return store, store.DocumentStore()
}

// createTestDocument inserts a crawled document.
func createTestDocument(t *testing.T, docs driven.DocumentStore, fileID, path string) domain.Document {
	t.Helper()
	doc := domain.Document{
		FileID:       fileID,
		Name:         filepath.Base(path),
		Path:         path,
		Size:         1024,
		CreatedTime:  "2024-01-02T03:04:05Z",
		ModifiedTime: "2024-02-03T04:05:06Z",
		Suffix:       domain.SuffixOf(path),
		Permalink:    "https://workdrive.zoho.com/file/" + fileID,
		DownloadURL:  "https://workdrive.zoho.com/api/v1/download/" + fileID,
	}
	require.NoError(t, docs.UpsertDocument(context.Background(), doc))
	return doc
}

// ==================== Store Creation and Initialization Tests ====================

func TestNewStore_CreatesDirectoryAndSchema(t *testing.T) {
	store, _ := setupTestStore(t)

	assert.FileExists(t, store.Path())

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)

	cols, err := store.tableColumns(context.Background(), "labels")
	require.NoError(t, err)
	for _, field := range domain.LabelFields() {
		assert.True(t, cols[field], "labels.%s missing", field)
	}
	assert.True(t, cols["synced_hash"])
}

func TestNewStore_ReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	store, err := NewStore(path)
	require.NoError(t, err)
	createTestDocument(t, store.DocumentStore(), "f1", "Manuals/guide.pdf")
	require.NoError(t, store.Close())

	store, err = NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	doc, err := store.DocumentStore().GetDocument(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, "Manuals/guide.pdf", doc.Path)
}

func TestNewStore_AddsMissingColumnsToOldDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")

	// Build a database as the first release left it.
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	initial, err := migrationFiles.ReadFile("migrations/001_initial.up.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(initial))
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE schema_migrations (version INTEGER PRIMARY KEY, applied_at DATETIME)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO schema_migrations (version) VALUES (1)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO documents (file_id, name, path, excerpt) VALUES ('old', 'a.txt', 'a.txt', 'hello')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO labels (file_id, doc_type, model, source, confidence) VALUES ('old', 'SOP', 'S50', 'heuristic', 0.6)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	store, err := NewStore(path)
	require.NoError(t, err)
	defer store.Close()
	docs := store.DocumentStore()
	ctx := context.Background()

	doc, err := docs.GetDocument(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, "hello", doc.ExcerptText())
	assert.Equal(t, "", doc.Permalink)

	label, err := docs.GetLabel(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, "SOP", label.DocType)
	assert.Equal(t, "", label.ProductLine)
}

func TestEnsureSchema_SecondCallIsNoop(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.EnsureSchema(ctx))
	assert.True(t, store.schemaEnsured)
}

// ==================== Document Tests ====================

func TestUpsertDocument_PreservesExtraction(t *testing.T) {
	_, docs := setupTestStore(t)
	ctx := context.Background()

	doc := createTestDocument(t, docs, "f1", "Manuals/guide.pdf")
	require.NoError(t, docs.StoreExcerpt(ctx, "f1", domain.ExtractionRecord{
		Excerpt: "Model S50", SHA256: "abc", Outcome: domain.OutcomeExtracted,
	}))

	doc.Name = "guide-v2.pdf"
	doc.Size = 2048
	require.NoError(t, docs.UpsertDocument(ctx, doc))

	got, err := docs.GetDocument(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "guide-v2.pdf", got.Name)
	assert.Equal(t, int64(2048), got.Size)
	assert.Equal(t, "Model S50", got.ExcerptText())
	assert.Equal(t, "abc", got.SHA256)
	assert.Equal(t, domain.OutcomeExtracted, got.ExtractionStatus)
}

func TestUpsertDocument_RequiresFileID(t *testing.T) {
	_, docs := setupTestStore(t)
	err := docs.UpsertDocument(context.Background(), domain.Document{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestGetDocument_NotFound(t *testing.T) {
	_, docs := setupTestStore(t)
	_, err := docs.GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMarkSeen(t *testing.T) {
	_, docs := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, docs, "f1", "a.txt")

	before, err := docs.GetDocument(ctx, "f1")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, docs.MarkSeen(ctx, "f1"))

	after, err := docs.GetDocument(ctx, "f1")
	require.NoError(t, err)
	assert.True(t, after.LastSeen.After(before.LastSeen))

	assert.ErrorIs(t, docs.MarkSeen(ctx, "missing"), domain.ErrNotFound)
}

func TestListMissingExcerpt(t *testing.T) {
	_, docs := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, docs, "f1", "b.pdf")
	createTestDocument(t, docs, "f2", "a.pdf")
	createTestDocument(t, docs, "f3", "c.exe")

	// An empty excerpt still counts as extracted.
	require.NoError(t, docs.StoreExcerpt(ctx, "f3", domain.ExtractionRecord{Outcome: domain.OutcomeSkipped}))

	pending, err := docs.ListMissingExcerpt(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "f2", pending[0].FileID)
	assert.Equal(t, "f1", pending[1].FileID)
	assert.False(t, pending[0].HasExcerpt())
}

func TestResetSkipped(t *testing.T) {
	_, docs := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, docs, "f1", "scan.pdf")
	createTestDocument(t, docs, "f2", "tool.exe")
	createTestDocument(t, docs, "f3", "notes.txt")

	require.NoError(t, docs.StoreExcerpt(ctx, "f1", domain.ExtractionRecord{
		SHA256: "abc", Outcome: domain.OutcomeSkipped, Error: "pdftotext not found",
	}))
	require.NoError(t, docs.StoreExcerpt(ctx, "f2", domain.ExtractionRecord{Outcome: domain.OutcomeSkipped}))
	require.NoError(t, docs.StoreExcerpt(ctx, "f3", domain.ExtractionRecord{Excerpt: "x", Outcome: domain.OutcomeExtracted}))

	n, err := docs.ResetSkipped(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	pending, err := docs.ListMissingExcerpt(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "f1", pending[0].FileID)
	assert.Empty(t, pending[0].SHA256)
	assert.Empty(t, pending[0].ExtractionError)

	n, err = docs.ResetSkipped(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStoreExcerpt_NotFound(t *testing.T) {
	_, docs := setupTestStore(t)
	err := docs.StoreExcerpt(context.Background(), "missing", domain.ExtractionRecord{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ==================== Label Tests ====================

func TestUpsertLabel_ForcesReviewFlag(t *testing.T) {
	_, docs := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, docs, "f1", "a.pdf")

	require.NoError(t, docs.UpsertLabel(ctx, domain.Label{
		FileID: "f1", DocType: "SOP", Source: domain.SourceLLM, Confidence: 0.9, NeedsReview: false,
	}))
	label, err := docs.GetLabel(ctx, "f1")
	require.NoError(t, err)
	assert.True(t, label.NeedsReview)
	assert.Equal(t, domain.SourceLLM, label.Source)
	assert.InDelta(t, 0.9, label.Confidence, 1e-9)

	require.NoError(t, docs.UpsertLabel(ctx, domain.Label{
		FileID: "f1", DocType: "Manual", Source: domain.SourceHuman, Confidence: 1, NeedsReview: true,
	}))
	label, err = docs.GetLabel(ctx, "f1")
	require.NoError(t, err)
	assert.False(t, label.NeedsReview)
	assert.Equal(t, "Manual", label.DocType)
}

func TestUpsertLabel_RoundTripsAllFields(t *testing.T) {
	_, docs := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, docs, "f1", "a.pdf")

	in := domain.Label{
		FileID:               "f1",
		DocType:              "SOP",
		ProductLine:          "Scrubbers",
		Model:                "S50",
		SoftwareVersion:      domain.OtherValue,
		SoftwareVersionOther: "9.9-beta",
		HardwareVersion:      "Rev A",
		Subsystem:            "Drive",
		Audience:             "Field Service",
		Priority:             "high",
		Lifecycle:            "active",
		Confidentiality:      "internal",
		Keywords:             "pump, seal",
		Source:               domain.SourceHeuristic,
		Confidence:           0.6,
	}
	require.NoError(t, docs.UpsertLabel(ctx, in))

	got, err := docs.GetLabel(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, in.Values(), got.Values())
}

func TestUpsertLabel_PreservesSyncedHash(t *testing.T) {
	_, docs := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, docs, "f1", "a.pdf")

	require.NoError(t, docs.UpsertLabel(ctx, domain.Label{FileID: "f1", DocType: "SOP", Source: domain.SourceHeuristic}))
	require.NoError(t, docs.MarkSynced(ctx, "f1", "hash-1"))
	require.NoError(t, docs.UpsertLabel(ctx, domain.Label{FileID: "f1", DocType: "PCN", Source: domain.SourceHeuristic}))

	got, err := docs.GetLabel(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "hash-1", got.SyncedHash)
}

func TestUpsertLabel_Validation(t *testing.T) {
	_, docs := setupTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, docs.UpsertLabel(ctx, domain.Label{Source: domain.SourceHuman}), domain.ErrInvalidInput)
	assert.ErrorIs(t, docs.UpsertLabel(ctx, domain.Label{FileID: "f1", Source: "robot"}), domain.ErrInvalidInput)
	assert.Error(t, docs.UpsertLabel(ctx, domain.Label{FileID: "missing", Source: domain.SourceHuman}),
		"labels reference documents")
}

func TestGetLabel_NotFound(t *testing.T) {
	_, docs := setupTestStore(t)
	_, err := docs.GetLabel(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListForHeuristics(t *testing.T) {
	_, docs := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, docs, "pending", "0.pdf")
	for i, id := range []string{"new", "empty", "heur", "llm", "human"} {
		createTestDocument(t, docs, id, fmt.Sprintf("%d.pdf", i+1))
		rec := domain.ExtractionRecord{Excerpt: "text", SHA256: "h", Outcome: domain.OutcomeExtracted}
		if id == "empty" {
			rec = domain.ExtractionRecord{SHA256: "h", Outcome: domain.OutcomeDegraded, Error: "bad"}
		}
		require.NoError(t, docs.StoreExcerpt(ctx, id, rec))
	}

	require.NoError(t, docs.UpsertLabel(ctx, domain.Label{FileID: "heur", Source: domain.SourceHeuristic}))
	require.NoError(t, docs.UpsertLabel(ctx, domain.Label{FileID: "llm", Source: domain.SourceLLM}))
	require.NoError(t, docs.UpsertLabel(ctx, domain.Label{FileID: "human", Source: domain.SourceHuman}))

	got, err := docs.ListForHeuristics(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "empty"}, fileIDs(got),
		"documents need an excerpt, even an empty one, and no classifier label")
}

func TestListForAssisted(t *testing.T) {
	_, docs := setupTestStore(t)
	ctx := context.Background()
	required := []string{domain.FieldDocType, domain.FieldProductLine, domain.FieldModel}
	complete := domain.Label{DocType: "SOP", ProductLine: "Scrubbers", Model: "S50"}

	for _, id := range []string{"missing", "lowconf", "confident", "llm", "unlabelled"} {
		createTestDocument(t, docs, id, id+".pdf")
	}

	l := domain.Label{FileID: "missing", DocType: "SOP", Source: domain.SourceHeuristic, Confidence: 0.95}
	require.NoError(t, docs.UpsertLabel(ctx, l))

	l = complete
	l.FileID, l.Source, l.Confidence = "lowconf", domain.SourceHeuristic, 0.6
	require.NoError(t, docs.UpsertLabel(ctx, l))

	l = complete
	l.FileID, l.Source, l.Confidence = "confident", domain.SourceHeuristic, 0.85
	require.NoError(t, docs.UpsertLabel(ctx, l))

	l = domain.Label{FileID: "llm", Source: domain.SourceLLM, Confidence: 0.1}
	require.NoError(t, docs.UpsertLabel(ctx, l))

	got, err := docs.ListForAssisted(ctx, required, 0.8)
	require.NoError(t, err)
	assert.Equal(t, []string{"lowconf", "missing"}, fileIDs(got))

	_, err = docs.ListForAssisted(ctx, []string{"doc_type; DROP TABLE labels"}, 0.8)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListJoinedAndForSync(t *testing.T) {
	_, docs := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, docs, "f2", "b.pdf")
	createTestDocument(t, docs, "f1", "a.pdf")
	require.NoError(t, docs.UpsertLabel(ctx, domain.Label{FileID: "f2", DocType: "SOP", Source: domain.SourceHeuristic}))

	joined, err := docs.ListJoined(ctx)
	require.NoError(t, err)
	require.Len(t, joined, 2)
	assert.Equal(t, "f1", joined[0].Document.FileID)
	assert.Nil(t, joined[0].Label)
	require.NotNil(t, joined[1].Label)
	assert.Equal(t, "SOP", joined[1].Label.DocType)

	rows, err := docs.ListForSync(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows, "unreviewed labels must not be synced")

	require.NoError(t, docs.UpsertLabel(ctx, domain.Label{FileID: "f2", DocType: "SOP", Source: domain.SourceHuman}))
	rows, err = docs.ListForSync(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "f2", rows[0].Document.FileID)
	assert.Equal(t, "SOP", rows[0].Label.DocType)
}

func TestMarkSynced_NotFound(t *testing.T) {
	_, docs := setupTestStore(t)
	assert.ErrorIs(t, docs.MarkSynced(context.Background(), "missing", "h"), domain.ErrNotFound)
}

// ==================== Audit Tests ====================

func TestAudit_AppendAndList(t *testing.T) {
	_, docs := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, docs.AppendAudit(ctx, domain.AuditEntry{FileID: "f1", Field: domain.AuditFieldSync, NewValue: `{"Doc Type":"SOP"}`}))
	require.NoError(t, docs.AppendAudit(ctx, domain.AuditEntry{FileID: "f2", Field: domain.AuditFieldReview, Actor: domain.ActorHuman}))
	require.NoError(t, docs.AppendAudit(ctx, domain.AuditEntry{FileID: "f1", Field: domain.AuditFieldReview, Actor: domain.ActorHuman}))

	all, err := docs.ListAudit(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.NotEmpty(t, all[0].ID)
	assert.Equal(t, domain.ActorPipeline, all[0].Actor)
	assert.False(t, all[0].CreatedAt.IsZero())

	f1, err := docs.ListAudit(ctx, "f1", 0)
	require.NoError(t, err)
	require.Len(t, f1, 2)
	assert.Equal(t, domain.AuditFieldSync, f1[0].Field)

	limited, err := docs.ListAudit(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	assert.ErrorIs(t, docs.AppendAudit(ctx, domain.AuditEntry{}), domain.ErrInvalidInput)
}

func TestStats(t *testing.T) {
	_, docs := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, docs, "f1", "a.pdf")
	createTestDocument(t, docs, "f2", "b.docx")
	createTestDocument(t, docs, "f3", "c.exe")
	require.NoError(t, docs.StoreExcerpt(ctx, "f1", domain.ExtractionRecord{Excerpt: "x", Outcome: domain.OutcomeExtracted}))
	require.NoError(t, docs.StoreExcerpt(ctx, "f3", domain.ExtractionRecord{Outcome: domain.OutcomeSkipped}))
	require.NoError(t, docs.UpsertLabel(ctx, domain.Label{FileID: "f1", Source: domain.SourceHeuristic}))
	require.NoError(t, docs.UpsertLabel(ctx, domain.Label{FileID: "f2", Source: domain.SourceHuman}))
	require.NoError(t, docs.MarkSynced(ctx, "f2", "h"))
	require.NoError(t, docs.AppendAudit(ctx, domain.AuditEntry{FileID: "f2", Field: domain.AuditFieldSync}))

	stats, err := docs.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Documents)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.Extracted)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 0, stats.Degraded)
	assert.Equal(t, 2, stats.Labelled)
	assert.Equal(t, 1, stats.NeedsReview)
	assert.Equal(t, 1, stats.Synced)
	assert.Equal(t, 1, stats.AuditEvents)
	assert.Equal(t, 1, stats.BySource[domain.SourceHuman])
}

func fileIDs(docs []domain.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.FileID)
	}
	return out
}
