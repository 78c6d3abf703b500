package driving

import "context"

// TemplateSyncer pushes labels to the remote metadata template.
type TemplateSyncer interface {
	// Sync writes every labelled document whose payload changed.
	Sync(ctx context.Context) (*SyncReport, error)

	// EnsureTemplate returns the template id, creating it at most once.
	EnsureTemplate(ctx context.Context) (string, error)
}

// SyncReport summarises a sync run.
type SyncReport struct {
	TemplateID string

	// Considered is the number of labelled documents.
	Considered int

	// Synced is the number of files written.
	Synced int

	// Unchanged counts files whose payload matched the last sync.
	Unchanged int

	// Empty counts labels with no values to write.
	Empty int
}
