package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/core/ports/driven"
	"github.com/custodia-labs/doclabel/internal/core/ports/driving"
	"github.com/custodia-labs/doclabel/internal/logger"
)

// Ensure Crawler implements the interface.
var _ driving.Crawler = (*Crawler)(nil)

// LinkBases are the bases used to complete links the drive leaves empty
// or relative.
type LinkBases struct {
	// AppBase is the browser-facing base, e.g. https://workdrive.zoho.com.
	AppBase string

	// APIBase is the API base, e.g. https://workdrive.zoho.com/api/v1.
	APIBase string
}

// Crawler walks remote folder trees into the document store.
type Crawler struct {
	store driven.DocumentStore
	drive driven.RemoteDrive
	links LinkBases
}

// NewCrawler creates a crawler.
func NewCrawler(store driven.DocumentStore, drive driven.RemoteDrive, links LinkBases) *Crawler {
	return &Crawler{store: store, drive: drive, links: links}
}

// Crawl walks each root recursively, upserting every file and stamping
// its last-seen time. Nothing is ever removed from the store.
func (c *Crawler) Crawl(ctx context.Context, roots []domain.FolderRef) (*driving.CrawlReport, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("%w: no crawl roots configured", domain.ErrInvalidInput)
	}

	logger.Section("crawl")
	report := &driving.CrawlReport{}
	visited := make(map[string]bool)

	for _, root := range roots {
		logger.Info("Crawling %s", root)
		if err := c.walk(ctx, root, "", visited, report); err != nil {
			return report, fmt.Errorf("crawl %s: %w", root, err)
		}
	}

	logger.Info("Crawl complete: %d folders, %d documents", report.Folders, report.Documents)
	return report, nil
}

func (c *Crawler) walk(
	ctx context.Context,
	folder domain.FolderRef,
	prefix string,
	visited map[string]bool,
	report *driving.CrawlReport,
) error {
	if visited[folder.ID] {
		logger.Warn("Skipping folder %s: already visited", folder.ID)
		return nil
	}
	visited[folder.ID] = true
	report.Folders++

	// Children are collected first so the listing finishes before recursion.
	var subfolders []domain.RemoteItem
	var subpaths []string

	err := c.drive.ListFolder(ctx, folder, func(item domain.RemoteItem) error {
		fullPath := joinPath(prefix, item.Name)
		if item.IsFolder {
			subfolders = append(subfolders, item)
			subpaths = append(subpaths, fullPath)
			return nil
		}
		return c.record(ctx, item, fullPath, report)
	})
	if err != nil {
		return err
	}

	for i, sub := range subfolders {
		child := domain.FolderRef{Kind: domain.FolderKindFolder, ID: sub.ID}
		if err := c.walk(ctx, child, subpaths[i], visited, report); err != nil {
			return err
		}
	}
	return nil
}

func (c *Crawler) record(ctx context.Context, item domain.RemoteItem, fullPath string, report *driving.CrawlReport) error {
	doc := domain.Document{
		FileID:       item.ID,
		Name:         item.Name,
		Path:         fullPath,
		Size:         item.Size,
		CreatedTime:  item.CreatedTime,
		ModifiedTime: item.ModifiedTime,
		Suffix:       domain.SuffixOf(item.Name),
		Permalink:    c.permalink(item),
		DownloadURL:  c.downloadURL(item),
	}
	if err := c.store.UpsertDocument(ctx, doc); err != nil {
		return fmt.Errorf("store %s: %w", item.ID, err)
	}
	if err := c.store.MarkSeen(ctx, item.ID); err != nil {
		return fmt.Errorf("mark seen %s: %w", item.ID, err)
	}
	report.Documents++
	logger.Progress("crawl", report.Documents, 0, 100)
	return nil
}

func (c *Crawler) permalink(item domain.RemoteItem) string {
	if item.Permalink != "" {
		return resolveLink(c.links.AppBase, item.Permalink)
	}
	return joinURL(c.links.AppBase, "file", item.ID)
}

func (c *Crawler) downloadURL(item domain.RemoteItem) string {
	if item.DownloadURL != "" {
		return resolveLink(c.links.APIBase, item.DownloadURL)
	}
	return joinURL(c.links.APIBase, "download", item.ID)
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// resolveLink makes link absolute against base. Absolute links and
// unparseable input are returned unchanged.
func resolveLink(base, link string) string {
	ref, err := url.Parse(link)
	if err != nil || ref.IsAbs() || base == "" {
		return link
	}
	b, err := url.Parse(strings.TrimRight(base, "/") + "/")
	if err != nil {
		return link
	}
	return b.ResolveReference(ref).String()
}

func joinURL(base string, parts ...string) string {
	out := strings.TrimRight(base, "/")
	for _, p := range parts {
		out += "/" + url.PathEscape(p)
	}
	return out
}
