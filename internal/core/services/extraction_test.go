package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/doclabel/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/extractors"
)

func seedDocument(t *testing.T, store *memory.DocumentStore, id, path string) {
	t.Helper()
	require.NoError(t, store.UpsertDocument(context.Background(), domain.Document{
		FileID: id,
		Name:   path[strings.LastIndex(path, "/")+1:],
		Path:   path,
		Suffix: domain.SuffixOf(path),
	}))
}

func hashOf(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func TestExtractionService_Outcomes(t *testing.T) {
	store := memory.NewDocumentStore()
	seedDocument(t, store, "ok", "a/notes.txt")
	seedDocument(t, store, "bad", "a/broken.docx")
	seedDocument(t, store, "odd", "a/image.png")
	seedDocument(t, store, "boom", "a/crash.pdf")

	drive := newFakeDrive()
	drive.files["ok"] = []byte("hello world")
	drive.files["bad"] = []byte("not a zip")
	drive.files["odd"] = []byte{0x89, 'P', 'N', 'G'}
	drive.files["boom"] = []byte("%PDF")

	registry := extractors.NewRegistry()
	registry.Register(&fakeExtractor{exts: []string{".txt"}})
	registry.Register(&fakeExtractor{exts: []string{".docx"}, err: fmt.Errorf("%w: zip: not a valid zip file", domain.ErrExtractionFailed)})
	registry.Register(&fakeExtractor{exts: []string{".pdf"}, pan: "index out of range"})

	svc := NewExtractionService(store, drive, registry, 100)
	ctx := context.Background()

	report, err := svc.ExtractPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Processed)
	assert.Equal(t, 1, report.Extracted)
	assert.Equal(t, 2, report.Degraded)
	assert.Equal(t, 1, report.Skipped)

	ok, err := store.GetDocument(ctx, "ok")
	require.NoError(t, err)
	assert.Equal(t, "hello world", ok.ExcerptText())
	assert.Equal(t, hashOf([]byte("hello world")), ok.SHA256)
	assert.Equal(t, domain.OutcomeExtracted, ok.ExtractionStatus)

	bad, err := store.GetDocument(ctx, "bad")
	require.NoError(t, err)
	require.NotNil(t, bad.Excerpt)
	assert.Empty(t, *bad.Excerpt)
	assert.Equal(t, domain.OutcomeDegraded, bad.ExtractionStatus)
	assert.Contains(t, bad.ExtractionError, "not a valid zip")
	assert.Equal(t, hashOf([]byte("not a zip")), bad.SHA256)

	odd, err := store.GetDocument(ctx, "odd")
	require.NoError(t, err)
	require.NotNil(t, odd.Excerpt)
	assert.Equal(t, domain.OutcomeSkipped, odd.ExtractionStatus)

	boom, err := store.GetDocument(ctx, "boom")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeDegraded, boom.ExtractionStatus)
	assert.Contains(t, boom.ExtractionError, "panic")

	// Degraded and skipped documents are never retried.
	drive.downloads = nil
	report, err = svc.ExtractPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Processed)
	assert.Empty(t, drive.downloads)
}

func TestExtractionService_TruncatesByCharacters(t *testing.T) {
	store := memory.NewDocumentStore()
	seedDocument(t, store, "long", "long.txt")
	drive := newFakeDrive()
	drive.files["long"] = []byte(strings.Repeat("é", 50))

	registry := extractors.NewRegistry()
	registry.Register(&fakeExtractor{exts: []string{".txt"}})

	_, err := NewExtractionService(store, drive, registry, 10).ExtractPending(context.Background())
	require.NoError(t, err)

	doc, err := store.GetDocument(context.Background(), "long")
	require.NoError(t, err)
	assert.Equal(t, 10, utf8.RuneCountInString(doc.ExcerptText()))
	assert.True(t, utf8.ValidString(doc.ExcerptText()))
	assert.Equal(t, hashOf([]byte(strings.Repeat("é", 50))), doc.SHA256, "hash covers the full download")
}

func TestExtractionService_DownloadFailureAborts(t *testing.T) {
	store := memory.NewDocumentStore()
	seedDocument(t, store, "a", "1.txt")
	seedDocument(t, store, "b", "2.txt")
	seedDocument(t, store, "c", "3.txt")
	drive := newFakeDrive()
	drive.files["a"] = []byte("first")
	drive.downloadErr["b"] = fmt.Errorf("%w: status 503", domain.ErrRemoteTransient)
	drive.files["c"] = []byte("third")

	registry := extractors.NewRegistry()
	registry.Register(&fakeExtractor{exts: []string{".txt"}})

	report, err := NewExtractionService(store, drive, registry, 0).ExtractPending(context.Background())
	require.ErrorIs(t, err, domain.ErrRemoteTransient)
	assert.Equal(t, 1, report.Processed)

	pending, err := store.ListMissingExcerpt(context.Background())
	require.NoError(t, err)
	assert.Len(t, pending, 2, "the failing document and everything after it stay pending")
}

func TestExtractionService_MissingToolMarksSkipped(t *testing.T) {
	store := memory.NewDocumentStore()
	seedDocument(t, store, "p", "Manuals/S50 manual.pdf")
	drive := newFakeDrive()
	drive.files["p"] = []byte("%PDF-1.7")

	missing := &fakeExtractor{exts: []string{".pdf"}, err: fmt.Errorf("%w: pdftotext not found", domain.ErrExtractorUnavailable)}
	registry := extractors.NewRegistry()
	registry.Register(missing)

	svc := NewExtractionService(store, drive, registry, 0)
	ctx := context.Background()

	report, err := svc.ExtractPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.MissingTool)

	doc, err := store.GetDocument(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSkipped, doc.ExtractionStatus)
	assert.Contains(t, doc.ExtractionError, "pdftotext not found")
	assert.True(t, doc.HasExcerpt())
	assert.Empty(t, doc.ExcerptText())

	// A second run does not download the file again.
	report, err = svc.ExtractPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Processed)
	assert.Len(t, drive.downloads, 1)

	// The filename alone is enough for the heuristic stage.
	eligible, err := store.ListForHeuristics(ctx)
	require.NoError(t, err)
	assert.Len(t, eligible, 1)
}

func TestExtractionService_RetrySkipped(t *testing.T) {
	store := memory.NewDocumentStore()
	seedDocument(t, store, "p", "scan.pdf")
	seedDocument(t, store, "img", "photo.png")
	drive := newFakeDrive()
	drive.files["p"] = []byte("%PDF-1.7")
	drive.files["img"] = []byte{0x89, 'P', 'N', 'G'}

	pdf := &fakeExtractor{exts: []string{".pdf"}, err: fmt.Errorf("%w: pdftotext not found", domain.ErrExtractorUnavailable)}
	registry := extractors.NewRegistry()
	registry.Register(pdf)

	svc := NewExtractionService(store, drive, registry, 0)
	ctx := context.Background()
	_, err := svc.ExtractPending(ctx)
	require.NoError(t, err)

	// Tool installed.
	pdf.err = nil
	pdf.text = "scanned text"

	n, err := svc.RetrySkipped(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "unsupported types stay skipped")

	report, err := svc.ExtractPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Extracted)

	doc, err := store.GetDocument(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "scanned text", doc.ExcerptText())
	assert.Equal(t, domain.OutcomeExtracted, doc.ExtractionStatus)
	assert.Empty(t, doc.ExtractionError)
}
