package domain

import "unicode/utf8"

// ExtractionOutcome distinguishes the three ways extraction can end.
type ExtractionOutcome string

const (
	// OutcomeExtracted means a parser produced text (possibly empty).
	OutcomeExtracted ExtractionOutcome = "extracted"

	// OutcomeDegraded means a parser failed; the excerpt is stored empty.
	OutcomeDegraded ExtractionOutcome = "degraded"

	// OutcomeSkipped means no parser handles the file type.
	OutcomeSkipped ExtractionOutcome = "skipped"
)

// IsValid reports whether the outcome is one of the known values.
func (o ExtractionOutcome) IsValid() bool {
	switch o {
	case OutcomeExtracted, OutcomeDegraded, OutcomeSkipped:
		return true
	}
	return false
}

// ExtractionResult is what extracting one file produced.
type ExtractionResult struct {
	Outcome ExtractionOutcome
	Text    string
	Err     error
}

// Extracted returns a successful result.
func Extracted(text string) ExtractionResult {
	return ExtractionResult{Outcome: OutcomeExtracted, Text: text}
}

// Degraded returns a failed result carrying the parser error.
func Degraded(err error) ExtractionResult {
	return ExtractionResult{Outcome: OutcomeDegraded, Err: err}
}

// Skipped returns the result for unsupported file types.
func Skipped() ExtractionResult {
	return ExtractionResult{Outcome: OutcomeSkipped}
}

// ExtractionRecord is persisted against a document after extraction.
type ExtractionRecord struct {
	Excerpt string
	SHA256  string
	Outcome ExtractionOutcome
	Error   string
}

// Record converts the result into the row stored for fileHash.
func (r ExtractionResult) Record(fileHash string) ExtractionRecord {
	rec := ExtractionRecord{
		Excerpt: r.Text,
		SHA256:  fileHash,
		Outcome: r.Outcome,
	}
	if r.Err != nil {
		rec.Error = r.Err.Error()
	}
	return rec
}

// TruncateRunes cuts s to at most limit characters without splitting a
// multi-byte character. A non-positive limit returns s unchanged.
func TruncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
