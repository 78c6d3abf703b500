package csvreview

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/core/ports/driving"
	"github.com/custodia-labs/doclabel/internal/logger"
)

// Document columns, written before the label fields.
const (
	ColFileID       = "file_id"
	ColPath         = "path"
	ColName         = "name"
	ColSize         = "size"
	ColModifiedTime = "modified_time"
	ColPermalink    = "permalink"
	ColDownloadURL  = "download_url"
	ColExcerpt      = "excerpt"
)

// Label metadata columns, written after the label fields.
const (
	ColSource      = "source"
	ColConfidence  = "confidence"
	ColNeedsReview = "needs_review"
)

// utf8BOM is stripped from the first header cell; spreadsheet tools add it.
const utf8BOM = "\ufeff"

// Header returns the export column order.
func Header() []string {
	cols := []string{
		ColFileID, ColPath, ColName, ColSize, ColModifiedTime,
		ColPermalink, ColDownloadURL, ColExcerpt,
	}
	cols = append(cols, domain.LabelFields()...)
	return append(cols, ColSource, ColConfidence, ColNeedsReview)
}

// Export writes every document joined with its label to w and returns
// the number of data rows written.
func Export(ctx context.Context, svc driving.ReviewService, w io.Writer) (int, error) {
	rows, err := svc.ListForReview(ctx)
	if err != nil {
		return 0, err
	}
	return writeRows(w, rows)
}

// ExportFile writes the export to path, creating parent directories. An
// empty inventory writes nothing and leaves any existing file alone.
func ExportFile(ctx context.Context, svc driving.ReviewService, path string) (int, error) {
	rows, err := svc.ListForReview(ctx)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		logger.Warn("Nothing to export: the inventory is empty")
		return 0, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create export directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	n, err := writeRows(f, rows)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close %s: %w", path, cerr)
	}
	if err != nil {
		return n, err
	}
	logger.Info("Exported %d rows to %s", n, path)
	return n, nil
}

func writeRows(w io.Writer, rows []domain.ReviewRow) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(record(row)); err != nil {
			return i, fmt.Errorf("write row %s: %w", row.Document.FileID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return len(rows), fmt.Errorf("flush csv: %w", err)
	}
	return len(rows), nil
}

func record(row domain.ReviewRow) []string {
	d := row.Document
	out := []string{
		d.FileID, d.Path, d.Name, strconv.FormatInt(d.Size, 10), d.ModifiedTime,
		d.Permalink, d.DownloadURL, d.ExcerptText(),
	}
	if row.Label == nil {
		for range domain.LabelFields() {
			out = append(out, "")
		}
		return append(out, "", "", "")
	}
	l := row.Label
	for _, field := range domain.LabelFields() {
		out = append(out, l.Get(field))
	}
	return append(out,
		string(l.Source),
		strconv.FormatFloat(l.Confidence, 'f', -1, 64),
		strconv.FormatBool(l.NeedsReview),
	)
}

// RowError is a rejected import row. Row counts data rows from 1, so the
// header is row 0.
type RowError struct {
	Row    int
	FileID string
	Err    error
}

func (e *RowError) Error() string {
	if e.FileID == "" {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("row %d (%s): %v", e.Row, e.FileID, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ImportReport summarises an import.
type ImportReport struct {
	// Rows is the number of data rows read.
	Rows int

	// Applied is the number of corrections stored.
	Applied int

	// Skipped counts rows without any label value.
	Skipped int

	// Errors lists the rejected rows in file order.
	Errors []*RowError
}

// Err joins the row errors, or returns nil when every row was accepted.
func (r *ImportReport) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// Import reads a corrected CSV and applies each row as a human label.
// Columns are matched by header name; document columns are ignored.
// Row-level failures are collected in the report; the returned error is
// reserved for unreadable input and cancellation.
func Import(ctx context.Context, svc driving.ReviewService, r io.Reader) (*ImportReport, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: csv is empty", domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := indexHeader(header)
	if _, ok := columns[ColFileID]; !ok {
		return nil, fmt.Errorf("%w: csv has no %s column", domain.ErrInvalidInput, ColFileID)
	}

	report := &ImportReport{}
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		report.Rows++
		if err != nil {
			report.Errors = append(report.Errors, &RowError{Row: report.Rows, Err: err})
			continue
		}

		label, ok := labelFromRecord(columns, rec)
		if !ok {
			report.Skipped++
			continue
		}
		if err := svc.ApplyCorrection(ctx, label); err != nil {
			report.Errors = append(report.Errors, &RowError{Row: report.Rows, FileID: label.FileID, Err: err})
			logger.Warn("Rejected row %d (%s): %v", report.Rows, label.FileID, err)
			continue
		}
		report.Applied++
	}

	logger.Info("Imported %d of %d rows (%d skipped, %d rejected)",
		report.Applied, report.Rows, report.Skipped, len(report.Errors))
	return report, nil
}

// ImportFile opens path and imports it.
func ImportFile(ctx context.Context, svc driving.ReviewService, path string) (*ImportReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Import(ctx, svc, f)
}

func indexHeader(header []string) map[string]int {
	out := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if _, dup := out[name]; !dup {
			out[name] = i
		}
	}
	return out
}

// labelFromRecord builds the corrected label. It reports false for rows
// that carry no label value at all.
func labelFromRecord(columns map[string]int, rec []string) (domain.Label, bool) {
	cell := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	label := domain.Label{FileID: cell(ColFileID)}
	for _, field := range domain.LabelFields() {
		_ = label.Set(field, cell(field))
	}
	if label.IsEmpty() {
		return label, false
	}
	return label, true
}
