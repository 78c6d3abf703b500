package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/core/ports/driven"
)

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

const documentColumns = `d.file_id, d.name, d.path, d.size, d.created_time, d.modified_time, d.suffix,
	d.permalink, d.download_url, d.excerpt, d.sha256, d.extraction_status, d.extraction_error, d.last_seen`

// Close closes the underlying database.
func (s *documentStore) Close() error {
	return s.store.Close()
}

// UpsertDocument stores crawl metadata, leaving extraction columns alone.
func (s *documentStore) UpsertDocument(ctx context.Context, doc domain.Document) error {
	if doc.FileID == "" {
		return fmt.Errorf("%w: document without file id", domain.ErrInvalidInput)
	}
	if doc.LastSeen.IsZero() {
		doc.LastSeen = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (file_id, name, path, size, created_time, modified_time, suffix,
			permalink, download_url, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_id) DO UPDATE SET
			name = excluded.name,
			path = excluded.path,
			size = excluded.size,
			created_time = excluded.created_time,
			modified_time = excluded.modified_time,
			suffix = excluded.suffix,
			permalink = excluded.permalink,
			download_url = excluded.download_url,
			last_seen = excluded.last_seen
	`, doc.FileID, doc.Name, doc.Path, doc.Size, doc.CreatedTime, doc.ModifiedTime, doc.Suffix,
		doc.Permalink, doc.DownloadURL, doc.LastSeen)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// MarkSeen stamps the last-seen time.
func (s *documentStore) MarkSeen(ctx context.Context, fileID string) error {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE documents SET last_seen = ? WHERE file_id = ?", time.Now().UTC(), fileID)
	if err != nil {
		return fmt.Errorf("marking document seen: %w", err)
	}
	return requireAffected(res, fileID)
}

// GetDocument retrieves a document by file id.
func (s *documentStore) GetDocument(ctx context.Context, fileID string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents d WHERE d.file_id = ?", fileID)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ListMissingExcerpt returns documents extraction has not run for.
func (s *documentStore) ListMissingExcerpt(ctx context.Context) ([]domain.Document, error) {
	return s.queryDocuments(ctx,
		"SELECT "+documentColumns+" FROM documents d WHERE d.excerpt IS NULL ORDER BY d.path, d.file_id")
}

// StoreExcerpt records an extraction result.
func (s *documentStore) StoreExcerpt(ctx context.Context, fileID string, rec domain.ExtractionRecord) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE documents
		SET excerpt = ?, sha256 = ?, extraction_status = ?, extraction_error = ?
		WHERE file_id = ?
	`, rec.Excerpt, rec.SHA256, string(rec.Outcome), rec.Error, fileID)
	if err != nil {
		return fmt.Errorf("saving excerpt: %w", err)
	}
	return requireAffected(res, fileID)
}

// ResetSkipped clears extraction results of documents skipped with an error.
func (s *documentStore) ResetSkipped(ctx context.Context) (int, error) {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE documents
		SET excerpt = NULL, sha256 = '', extraction_status = '', extraction_error = ''
		WHERE extraction_status = ? AND extraction_error != ''
	`, string(domain.OutcomeSkipped))
	if err != nil {
		return 0, fmt.Errorf("resetting skipped documents: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking affected rows: %w", err)
	}
	return int(n), nil
}

// ListForHeuristics returns extracted documents without a labelled source.
func (s *documentStore) ListForHeuristics(ctx context.Context) ([]domain.Document, error) {
	return s.queryDocuments(ctx, `
		SELECT `+documentColumns+`
		FROM documents d
		LEFT JOIN labels l ON l.file_id = d.file_id
		WHERE d.excerpt IS NOT NULL AND (l.file_id IS NULL OR l.source = '')
		ORDER BY d.path, d.file_id
	`)
}

// ListForAssisted returns heuristic labels that need escalation.
func (s *documentStore) ListForAssisted(
	ctx context.Context,
	required []string,
	threshold float64,
) ([]domain.Document, error) {
	conds := make([]string, 0, len(required)+1)
	for _, field := range required {
		if !domain.IsLabelField(field) {
			return nil, fmt.Errorf("%w: unknown label field %q", domain.ErrInvalidInput, field)
		}
		conds = append(conds, fmt.Sprintf("l.%s = ''", field))
	}
	conds = append(conds, "l.confidence < ?")

	return s.queryDocuments(ctx, `
		SELECT `+documentColumns+`
		FROM documents d
		JOIN labels l ON l.file_id = d.file_id
		WHERE l.source = ? AND (`+strings.Join(conds, " OR ")+`)
		ORDER BY d.path, d.file_id
	`, string(domain.SourceHeuristic), threshold)
}

func (s *documentStore) queryDocuments(ctx context.Context, query string, args ...any) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// ==================== Helpers ====================

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*domain.Document, error) {
	var doc domain.Document
	var excerpt sql.NullString
	var status string
	var lastSeen sql.NullTime

	if err := row.Scan(&doc.FileID, &doc.Name, &doc.Path, &doc.Size, &doc.CreatedTime,
		&doc.ModifiedTime, &doc.Suffix, &doc.Permalink, &doc.DownloadURL, &excerpt,
		&doc.SHA256, &status, &doc.ExtractionError, &lastSeen); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	if excerpt.Valid {
		text := excerpt.String
		doc.Excerpt = &text
	}
	doc.ExtractionStatus = domain.ExtractionOutcome(status)
	if lastSeen.Valid {
		doc.LastSeen = lastSeen.Time
	}
	return &doc, nil
}

func requireAffected(res sql.Result, fileID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("document %s: %w", fileID, domain.ErrNotFound)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
