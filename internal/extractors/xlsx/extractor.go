// Package xlsx extracts a preview of Excel workbooks (.xlsx, .xlsm).
package xlsx

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/core/ports/driven"
)

// MaxRows is the number of rows read from the first sheet, header included.
const MaxRows = 20

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles OOXML spreadsheets.
type Extractor struct{}

// New creates a new spreadsheet extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the suffixes this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".xlsx", ".xlsm"}
}

// Extract returns the first MaxRows rows of the first sheet, one line per
// row with cells joined by spaces.
func (e *Extractor) Extract(ctx context.Context, data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: opening workbook: %v", domain.ErrExtractionFailed, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return "", fmt.Errorf("%w: reading sheet %q: %v", domain.ErrExtractionFailed, sheets[0], err)
	}
	defer rows.Close()

	var lines []string
	for n := 0; n < MaxRows && rows.Next(); n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		cols, err := rows.Columns()
		if err != nil {
			return "", fmt.Errorf("%w: reading row %d: %v", domain.ErrExtractionFailed, n+1, err)
		}
		lines = append(lines, joinCells(cols))
	}
	if err := rows.Error(); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n"), nil
}

func joinCells(cols []string) string {
	cells := make([]string, 0, len(cols))
	for _, c := range cols {
		cells = append(cells, strings.TrimSpace(c))
	}
	return strings.TrimSpace(strings.Join(cells, " "))
}
