// Package drive implements the remote drive port on Google Drive. Labels
// are written as file appProperties keyed by label field.
package drive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/doclabel/internal/connectors/google"
	"github.com/custodia-labs/doclabel/internal/connectors/retry"
	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/core/ports/driven"
	"github.com/custodia-labs/doclabel/internal/logger"
)

// TemplateID is returned by CreateTemplate. Drive has no template
// objects, so every file carries its labels directly.
const TemplateID = "appProperties"

// MimeTypeFolder is the Drive folder MIME type.
const MimeTypeFolder = "application/vnd.google-apps.folder"

// MaxPageSize is the largest page Drive accepts.
const MaxPageSize = 1000

// rateLimitPause is how long requests pause after Drive throttles us.
const rateLimitPause = 2 * time.Second

// Drive allows 10 requests per second per user.
const (
	requestsPerSecond = 8.0
	burstSize         = 10
)

const listFields = "nextPageToken, files(id, name, mimeType, size, createdTime, modifiedTime, webViewLink, webContentLink)"

// exportFormat is the office format a native Google file is exported to.
type exportFormat struct {
	mimeType  string
	extension string
}

var exportFormats = map[string]exportFormat{
	"application/vnd.google-apps.document": {
		mimeType:  "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		extension: ".docx",
	},
	"application/vnd.google-apps.spreadsheet": {
		mimeType:  "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		extension: ".xlsx",
	},
	"application/vnd.google-apps.presentation": {
		mimeType:  "application/pdf",
		extension: ".pdf",
	},
}

// Ensure Drive implements the interface.
var _ driven.RemoteDrive = (*Drive)(nil)

// Drive talks to the Google Drive v3 API.
type Drive struct {
	svc      *drive.Service
	limiter  *retry.Limiter
	pageSize int64
}

// New wraps a Drive service. pageSize is capped at MaxPageSize.
func New(svc *drive.Service, pageSize int, limiter *retry.Limiter) *Drive {
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if limiter == nil {
		limiter = retry.NewLimiter(requestsPerSecond, burstSize)
	}
	return &Drive{svc: svc, limiter: limiter, pageSize: int64(pageSize)}
}

// call runs one API request with pacing and retries.
func (d *Drive) call(ctx context.Context, what string, op func() error) error {
	err := retry.Do(ctx, what, google.IsRetryable, func() error {
		if err := d.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
		err := op()
		if google.IsRateLimited(err) {
			d.limiter.Pause(rateLimitPause)
		}
		return err
	})
	return google.WrapError(err)
}

// ListFolder lists the non-trashed children of a folder or shared drive.
func (d *Drive) ListFolder(ctx context.Context, folder domain.FolderRef, fn func(domain.RemoteItem) error) error {
	query := fmt.Sprintf("'%s' in parents and trashed = false", strings.ReplaceAll(folder.ID, "'", `\'`))
	pageToken := ""
	for {
		var resp *drive.FileList
		err := d.call(ctx, "list "+folder.String(), func() error {
			call := d.svc.Files.List().
				Q(query).
				PageSize(d.pageSize).
				Fields(googleapi.Field(listFields)).
				SupportsAllDrives(true).
				IncludeItemsFromAllDrives(true).
				OrderBy("folder,name").
				Context(ctx)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}
			var err error
			resp, err = call.Do()
			return err
		})
		if err != nil {
			return fmt.Errorf("listing %s: %w", folder, err)
		}

		for _, f := range resp.Files {
			if err := fn(toItem(f)); err != nil {
				return err
			}
		}
		if resp.NextPageToken == "" {
			return nil
		}
		pageToken = resp.NextPageToken
	}
}

func toItem(f *drive.File) domain.RemoteItem {
	name := f.Name
	if format, ok := exportFormats[f.MimeType]; ok && !strings.EqualFold(domain.SuffixOf(name), format.extension) {
		name += format.extension
	}
	return domain.RemoteItem{
		ID:           f.Id,
		Name:         name,
		IsFolder:     f.MimeType == MimeTypeFolder,
		Size:         f.Size,
		CreatedTime:  f.CreatedTime,
		ModifiedTime: f.ModifiedTime,
		Permalink:    permalink(f),
		DownloadURL:  downloadURL(f),
	}
}

func downloadURL(f *drive.File) string {
	if f.WebContentLink != "" {
		return f.WebContentLink
	}
	return "https://www.googleapis.com/drive/v3/files/" + f.Id + "?alt=media"
}

// permalink prefers the web view link Drive reports.
func permalink(f *drive.File) string {
	if f.WebViewLink != "" {
		return f.WebViewLink
	}
	return "https://drive.google.com/file/d/" + f.Id + "/view"
}

// Download returns file content. Native Google files are exported to the
// matching office format.
func (d *Drive) Download(ctx context.Context, fileID string) ([]byte, error) {
	var meta *drive.File
	err := d.call(ctx, "get "+fileID, func() error {
		var err error
		meta, err = d.svc.Files.Get(fileID).Fields("id, mimeType").SupportsAllDrives(true).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", fileID, err)
	}

	var data []byte
	err = d.call(ctx, "download "+fileID, func() error {
		var (
			resp *http.Response
			err  error
		)
		if format, ok := exportFormats[meta.MimeType]; ok {
			resp, err = d.svc.Files.Export(fileID, format.mimeType).Context(ctx).Download()
		} else {
			resp, err = d.svc.Files.Get(fileID).SupportsAllDrives(true).Context(ctx).Download()
		}
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		data, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", fileID, err)
	}
	return data, nil
}

// CreateTemplate only checks the definition: labels live in appProperties.
func (d *Drive) CreateTemplate(_ context.Context, def domain.TemplateDefinition) (string, error) {
	for _, f := range def.Fields {
		if !domain.IsLabelField(f.Key) {
			return "", fmt.Errorf("%w: template field %q is not a label field", domain.ErrInvalidInput, f.Key)
		}
	}
	logger.Debug("google drive stores labels as appProperties; template %q needs no remote object", def.Name)
	return TemplateID, nil
}

// UpdateMetadata sets one appProperty per value, keyed by label field.
func (d *Drive) UpdateMetadata(ctx context.Context, fileID, _ string, values []domain.MetadataValue) error {
	if len(values) == 0 {
		return nil
	}
	props := make(map[string]string, len(values))
	for _, v := range values {
		props[v.Key] = v.Value
	}

	err := d.call(ctx, "update "+fileID, func() error {
		_, err := d.svc.Files.Update(fileID, &drive.File{AppProperties: props}).
			Fields("id").
			SupportsAllDrives(true).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("updating metadata of %s: %w", fileID, err)
	}
	return nil
}
