package domain

import (
	"path"
	"strings"
	"time"
)

// Document is a file discovered by the crawler. The excerpt and hash are
// filled in later by extraction; crawling never touches them.
type Document struct {
	// FileID is the remote file identifier and the primary key.
	FileID string

	// Name is the file name as reported by the drive.
	Name string

	// Path is the slash-joined path relative to the crawl root.
	Path string

	// Size is the content size in bytes.
	Size int64

	// CreatedTime and ModifiedTime are kept verbatim from the drive.
	CreatedTime  string
	ModifiedTime string

	// Suffix is the lowercased extension including the dot, e.g. ".pdf".
	Suffix string

	// Permalink is an absolute link a reviewer can open in a browser.
	Permalink string

	// DownloadURL is an absolute link to the raw file content.
	DownloadURL string

	// Excerpt is nil until extraction has run. An empty string means
	// extraction ran and produced no text.
	Excerpt *string

	// SHA256 is the hex digest of the downloaded bytes.
	SHA256 string

	// ExtractionStatus records how extraction went.
	ExtractionStatus ExtractionOutcome

	// ExtractionError holds the parser error for degraded extractions.
	ExtractionError string

	// LastSeen is the time the crawler last observed the file.
	LastSeen time.Time
}

// SuffixOf returns the lowercased extension of name, including the dot.
func SuffixOf(name string) string {
	return strings.ToLower(path.Ext(name))
}

// HasExcerpt reports whether extraction has run for the document.
func (d Document) HasExcerpt() bool {
	return d.Excerpt != nil
}

// ExcerptText returns the excerpt or "" when extraction has not run.
func (d Document) ExcerptText() string {
	if d.Excerpt == nil {
		return ""
	}
	return *d.Excerpt
}

// ReviewRow joins a document with its label. Label is nil when the
// document has not been classified yet.
type ReviewRow struct {
	Document Document
	Label    *Label
}

// SyncRow is a labelled document ready for metadata sync.
type SyncRow struct {
	Document Document
	Label    Label
}

// InventoryStats summarises the state of the local inventory.
type InventoryStats struct {
	Documents   int
	Extracted   int
	Degraded    int
	Skipped     int
	Pending     int
	Labelled    int
	NeedsReview int
	BySource    map[LabelSource]int
	Synced      int
	AuditEvents int
}
