package driving

import (
	"context"

	"github.com/custodia-labs/doclabel/internal/core/domain"
)

// Crawler walks remote folders and records every file in the inventory.
type Crawler interface {
	// Crawl walks each root recursively. Re-crawling the same tree leaves
	// the inventory unchanged apart from last-seen times.
	Crawl(ctx context.Context, roots []domain.FolderRef) (*CrawlReport, error)
}

// CrawlReport summarises a crawl.
type CrawlReport struct {
	// Folders is the number of folders listed, roots included.
	Folders int

	// Documents is the number of files recorded.
	Documents int
}
