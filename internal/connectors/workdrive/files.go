package workdrive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/logger"
)

type listResponse struct {
	Data []fileResource `json:"data"`
}

type fileResource struct {
	ID         string         `json:"id"`
	Attributes fileAttributes `json:"attributes"`
}

type fileAttributes struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	IsFolder    *bool   `json:"is_folder"`
	ContentSize flexInt `json:"content_size"`
	StorageInfo struct {
		SizeInBytes flexInt `json:"size_in_bytes"`
	} `json:"storage_info"`
	CreatedAt      string  `json:"created_at"`
	ModifiedAt     string  `json:"modified_at"`
	CreatedMillis  flexInt `json:"created_time_in_millisecond"`
	ModifiedMillis flexInt `json:"modified_time_in_millisecond"`
	Permalink      string  `json:"permalink"`
	DownloadURL    string  `json:"download_url"`
}

// flexInt accepts a JSON number, a numeric string, or null.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	s := strings.Trim(string(data), `"`)
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", data)
	}
	*f = flexInt(n)
	return nil
}

func (r fileResource) item() domain.RemoteItem {
	a := r.Attributes
	isFolder := strings.EqualFold(a.Type, "folder")
	if a.IsFolder != nil {
		isFolder = *a.IsFolder
	}
	size := int64(a.ContentSize)
	if size == 0 {
		size = int64(a.StorageInfo.SizeInBytes)
	}
	return domain.RemoteItem{
		ID:           r.ID,
		Name:         a.Name,
		IsFolder:     isFolder,
		Size:         size,
		CreatedTime:  timestamp(a.CreatedAt, a.CreatedMillis),
		ModifiedTime: timestamp(a.ModifiedAt, a.ModifiedMillis),
		Permalink:    a.Permalink,
		DownloadURL:  a.DownloadURL,
	}
}

// timestamp prefers the textual form and falls back to epoch millis.
func timestamp(text string, millis flexInt) string {
	if text != "" {
		return text
	}
	if millis > 0 {
		return time.UnixMilli(int64(millis)).UTC().Format(time.RFC3339)
	}
	return ""
}

func folderPath(folder domain.FolderRef) string {
	id := url.PathEscape(folder.ID)
	if folder.Kind == domain.FolderKindFolder {
		return "/files/" + id + "/files"
	}
	return "/teamfolders/" + id + "/files"
}

// ListFolder pages through the direct children of folder. The listing
// ends at the first empty or short page.
func (c *Client) ListFolder(ctx context.Context, folder domain.FolderRef, fn func(domain.RemoteItem) error) error {
	path := folderPath(folder)
	for offset := 0; ; offset += c.pageSize {
		query := url.Values{
			"page[limit]":  {strconv.Itoa(c.pageSize)},
			"page[offset]": {strconv.Itoa(offset)},
			"filter[type]": {"all"},
		}
		data, err := c.do(ctx, http.MethodGet, path, query, nil, DefaultTimeout)
		if err != nil {
			return fmt.Errorf("listing %s: %w", folder, err)
		}

		var page listResponse
		if err := json.Unmarshal(data, &page); err != nil {
			return fmt.Errorf("%w: decoding listing of %s: %v", domain.ErrRemotePermanent, folder, err)
		}
		logger.Debug("listed %d items from %s at offset %d", len(page.Data), folder, offset)

		for _, res := range page.Data {
			if err := fn(res.item()); err != nil {
				return err
			}
		}
		if len(page.Data) < c.pageSize {
			return nil
		}
	}
}

// Download fetches file content from /download/{id}. A 4xx response
// falls back to the legacy /files/{id}/content endpoint; server errors
// do not. Neither endpoint is retried.
func (c *Client) Download(ctx context.Context, fileID string) ([]byte, error) {
	id := url.PathEscape(fileID)
	data, err := c.fetch(ctx, "/download/"+id, DownloadTimeout)
	if err == nil {
		return data, nil
	}
	if !IsClientError(err) || IsRetryable(err) || IsUnauthorized(err) {
		return nil, fmt.Errorf("downloading %s: %w", fileID, err)
	}

	logger.Debug("download endpoint rejected %s, trying legacy content endpoint: %v", fileID, err)
	data, legacyErr := c.fetch(ctx, "/files/"+id+"/content", DownloadTimeout)
	if legacyErr != nil {
		return nil, fmt.Errorf("downloading %s: %w", fileID, errors.Join(err, legacyErr))
	}
	return data, nil
}
