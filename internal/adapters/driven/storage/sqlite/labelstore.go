package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/doclabel/internal/core/domain"
)

// labelColumns are the label value columns, named after the label fields.
var labelColumns = domain.LabelFields()

func labelSelect(alias string) string {
	cols := make([]string, 0, len(labelColumns)+6)
	cols = append(cols, alias+".file_id")
	for _, c := range labelColumns {
		cols = append(cols, alias+"."+c)
	}
	cols = append(cols,
		alias+".source", alias+".confidence", alias+".needs_review",
		alias+".synced_hash", alias+".updated_at")
	return strings.Join(cols, ", ")
}

// UpsertLabel writes a full label row. The synced hash of an existing
// row is preserved.
func (s *documentStore) UpsertLabel(ctx context.Context, label domain.Label) error {
	if label.FileID == "" {
		return fmt.Errorf("%w: label without file id", domain.ErrInvalidInput)
	}
	if !label.Source.IsValid() {
		return fmt.Errorf("%w: unknown label source %q", domain.ErrInvalidInput, label.Source)
	}
	label.NeedsReview = label.Source != domain.SourceHuman
	if label.UpdatedAt.IsZero() {
		label.UpdatedAt = time.Now().UTC()
	}

	cols := append([]string{"file_id"}, labelColumns...)
	cols = append(cols, "source", "confidence", "needs_review", "updated_at")

	args := make([]any, 0, len(cols))
	args = append(args, label.FileID)
	for _, c := range labelColumns {
		args = append(args, label.Get(c))
	}
	args = append(args, string(label.Source), label.Confidence, boolToInt(label.NeedsReview), label.UpdatedAt)

	updates := make([]string, 0, len(cols)-1)
	for _, c := range cols[1:] {
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", c, c))
	}

	query := fmt.Sprintf(`
		INSERT INTO labels (%s)
		VALUES (%s)
		ON CONFLICT(file_id) DO UPDATE SET %s
	`, strings.Join(cols, ", "), placeholders(len(cols)), strings.Join(updates, ", "))

	if _, err := s.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("saving label: %w", err)
	}
	return nil
}

// GetLabel retrieves the label of a document.
func (s *documentStore) GetLabel(ctx context.Context, fileID string) (*domain.Label, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+labelSelect("l")+" FROM labels l WHERE l.file_id = ?", fileID)
	label, err := scanLabel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return label, nil
}

// ListJoined returns every document with its label, ordered by path.
func (s *documentStore) ListJoined(ctx context.Context) ([]domain.ReviewRow, error) {
	docs, err := s.queryDocuments(ctx,
		"SELECT "+documentColumns+" FROM documents d ORDER BY d.path, d.file_id")
	if err != nil {
		return nil, err
	}
	labels, err := s.labelsByID(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ReviewRow, 0, len(docs))
	for _, doc := range docs {
		row := domain.ReviewRow{Document: doc}
		if l, ok := labels[doc.FileID]; ok {
			row.Label = &l
		}
		out = append(out, row)
	}
	return out, nil
}

// ListForSync returns labelled documents whose review flag is cleared.
func (s *documentStore) ListForSync(ctx context.Context) ([]domain.SyncRow, error) {
	docs, err := s.queryDocuments(ctx, `
		SELECT `+documentColumns+`
		FROM documents d
		JOIN labels l ON l.file_id = d.file_id
		WHERE l.needs_review = 0
		ORDER BY d.path, d.file_id
	`)
	if err != nil {
		return nil, err
	}
	labels, err := s.labelsByID(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.SyncRow, 0, len(docs))
	for _, doc := range docs {
		out = append(out, domain.SyncRow{Document: doc, Label: labels[doc.FileID]})
	}
	return out, nil
}

// MarkSynced records the payload hash last written to the drive.
func (s *documentStore) MarkSynced(ctx context.Context, fileID, payloadHash string) error {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE labels SET synced_hash = ? WHERE file_id = ?", payloadHash, fileID)
	if err != nil {
		return fmt.Errorf("marking label synced: %w", err)
	}
	return requireAffected(res, fileID)
}

func (s *documentStore) labelsByID(ctx context.Context) (map[string]domain.Label, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT "+labelSelect("l")+" FROM labels l")
	if err != nil {
		return nil, fmt.Errorf("querying labels: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Label)
	for rows.Next() {
		label, err := scanLabel(rows)
		if err != nil {
			return nil, err
		}
		out[label.FileID] = *label
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating labels: %w", err)
	}
	return out, nil
}

func scanLabel(row scanner) (*domain.Label, error) {
	var label domain.Label
	values := make([]string, len(labelColumns))
	var source string
	var needsReview int
	var updatedAt sql.NullTime

	dest := make([]any, 0, len(values)+6)
	dest = append(dest, &label.FileID)
	for i := range values {
		dest = append(dest, &values[i])
	}
	dest = append(dest, &source, &label.Confidence, &needsReview, &label.SyncedHash, &updatedAt)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning label: %w", err)
	}

	for i, c := range labelColumns {
		_ = label.Set(c, values[i])
	}
	label.Source = domain.LabelSource(source)
	label.NeedsReview = needsReview != 0
	if updatedAt.Valid {
		label.UpdatedAt = updatedAt.Time
	}
	return &label, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
