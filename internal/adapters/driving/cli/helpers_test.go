package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/core/ports/driving"
)

// setupServices wires s for the duration of the test.
func setupServices(t *testing.T, s *Services) {
	t.Helper()
	old := Services{
		Settings:  settings,
		Roots:     crawlRoots,
		Auth:      authService,
		Crawler:   crawler,
		Extractor: extractionService,
		Heuristic: heuristic,
		Assisted:  assisted,
		Review:    reviewService,
		Syncer:    templateSyncer,
		Inventory: inventoryService,
		Pipeline:  pipeline,
		Close:     closeServices,
	}
	oldWired, oldBootstrap := wired, bootstrap
	SetServices(s)
	t.Cleanup(func() {
		SetServices(&old)
		wired, bootstrap = oldWired, oldBootstrap
	})
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

type mockCrawler struct {
	roots  []domain.FolderRef
	report *driving.CrawlReport
	err    error
}

func (m *mockCrawler) Crawl(_ context.Context, roots []domain.FolderRef) (*driving.CrawlReport, error) {
	m.roots = roots
	return m.report, m.err
}

type mockExtraction struct {
	report  *driving.ExtractReport
	err     error
	reset   int
	retries int
}

func (m *mockExtraction) RetrySkipped(_ context.Context) (int, error) {
	m.retries++
	return m.reset, nil
}

func (m *mockExtraction) ExtractPending(_ context.Context) (*driving.ExtractReport, error) {
	return m.report, m.err
}

type mockClassifier struct {
	report *driving.ClassifyReport
	err    error
	calls  int
}

func (m *mockClassifier) Classify(_ context.Context) (*driving.ClassifyReport, error) {
	m.calls++
	return m.report, m.err
}

type mockSyncer struct {
	report *driving.SyncReport
	err    error
}

func (m *mockSyncer) Sync(_ context.Context) (*driving.SyncReport, error) { return m.report, m.err }

func (m *mockSyncer) EnsureTemplate(_ context.Context) (string, error) { return "tpl", nil }

type mockInventory struct {
	stats   *domain.InventoryStats
	entries []domain.AuditEntry
	fileID  string
	limit   int
}

func (m *mockInventory) Stats(_ context.Context) (*domain.InventoryStats, error) {
	return m.stats, nil
}

func (m *mockInventory) Audit(_ context.Context, fileID string, limit int) ([]domain.AuditEntry, error) {
	m.fileID, m.limit = fileID, limit
	return m.entries, nil
}

type mockAuth struct {
	status    domain.TokenStatus
	err       error
	refreshes int
	code      string
	redirect  string
}

func (m *mockAuth) Status(_ context.Context) (domain.TokenStatus, error) { return m.status, m.err }

func (m *mockAuth) Refresh(_ context.Context) (domain.TokenStatus, error) {
	m.refreshes++
	return m.status, m.err
}

func (m *mockAuth) Exchange(_ context.Context, code, redirectURI string) (string, error) {
	m.code, m.redirect = code, redirectURI
	return "1000.refresh", m.err
}

type mockPipeline struct {
	report *driving.PipelineReport
	err    error
	roots  []domain.FolderRef
}

func (m *mockPipeline) RunAll(_ context.Context, roots []domain.FolderRef) (*driving.PipelineReport, error) {
	m.roots = roots
	return m.report, m.err
}
