package driven

import (
	"context"

	"github.com/custodia-labs/doclabel/internal/core/domain"
)

// RemoteDrive is the remote document store being labelled.
type RemoteDrive interface {
	// ListFolder calls fn for every direct child of folder, following
	// pagination until the listing is exhausted. An error from fn stops
	// the listing and is returned.
	ListFolder(ctx context.Context, folder domain.FolderRef, fn func(domain.RemoteItem) error) error

	// Download returns the raw content of a file.
	Download(ctx context.Context, fileID string) ([]byte, error)

	// CreateTemplate creates the metadata template and returns its id.
	CreateTemplate(ctx context.Context, def domain.TemplateDefinition) (string, error)

	// UpdateMetadata writes template values to a file, attaching the
	// template first if the file does not carry it yet.
	UpdateMetadata(ctx context.Context, fileID, templateID string, values []domain.MetadataValue) error
}

// TemplateMarker persists the id of the created metadata template so it
// is created at most once.
type TemplateMarker interface {
	// Load returns the stored id, or "" when none is stored.
	Load() (string, error)

	// Save stores the id.
	Save(templateID string) error
}
