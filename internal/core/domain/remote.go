package domain

import (
	"fmt"
	"strings"
	"time"
)

// FolderKind distinguishes top-level shared folders from ordinary ones.
// Drives list the two through different endpoints.
type FolderKind string

const (
	FolderKindTeam   FolderKind = "teamfolder"
	FolderKindFolder FolderKind = "folder"
)

// FolderRef identifies a folder to list.
type FolderRef struct {
	Kind FolderKind
	ID   string
}

// String renders the ref in the "kind:id" form it is configured with.
func (f FolderRef) String() string {
	return string(f.Kind) + ":" + f.ID
}

// ParseFolderRef parses "teamfolder:<id>" or "folder:<id>". A bare id is
// a team folder.
func ParseFolderRef(s string) (FolderRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FolderRef{}, fmt.Errorf("%w: empty folder reference", ErrInvalidInput)
	}
	kind, id, found := strings.Cut(s, ":")
	if !found {
		return FolderRef{Kind: FolderKindTeam, ID: s}, nil
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return FolderRef{}, fmt.Errorf("%w: folder reference %q has no id", ErrInvalidInput, s)
	}
	switch FolderKind(strings.ToLower(strings.TrimSpace(kind))) {
	case FolderKindTeam:
		return FolderRef{Kind: FolderKindTeam, ID: id}, nil
	case FolderKindFolder:
		return FolderRef{Kind: FolderKindFolder, ID: id}, nil
	}
	return FolderRef{}, fmt.Errorf("%w: unknown folder kind %q", ErrInvalidInput, kind)
}

// ParseFolderRefs parses a list of folder references.
func ParseFolderRefs(values []string) ([]FolderRef, error) {
	refs := make([]FolderRef, 0, len(values))
	for _, v := range values {
		ref, err := ParseFolderRef(v)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// RemoteItem is a file or folder as listed by a drive.
type RemoteItem struct {
	ID           string
	Name         string
	IsFolder     bool
	Size         int64
	CreatedTime  string
	ModifiedTime string

	// Permalink and DownloadURL may be empty or relative; the crawler
	// resolves them.
	Permalink   string
	DownloadURL string
}

// TokenStatus describes the cached access token.
type TokenStatus struct {
	Cached    bool
	ExpiresAt time.Time
}

// Valid reports whether the cached token is usable at now.
func (s TokenStatus) Valid(now time.Time) bool {
	return s.Cached && now.Before(s.ExpiresAt)
}
