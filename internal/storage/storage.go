package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/google/uuid"
)

// BlobStore is the object storage used for uploaded documents and message attachments.
type BlobStore interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	// KeyFromURL maps a stored object's public URL back to its key.
	KeyFromURL(url string) (string, bool)
}

// UploadedFile describes one object written by the upload middleware.
type UploadedFile struct {
	URL          string `json:"url"`
	Key          string `json:"key"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
	OriginalName string `json:"originalName"`
}

var (
	ErrUploadFailed = &internal.AppError{
		Type:       internal.ErrorTypeExternal,
		Code:       internal.ErrCodeStorageFailed,
		Message:    "Failed to store file",
		StatusCode: 502,
	}
	ErrFileRequired = internal.NewValidationError("At least one file is required", internal.ErrCodeFileRequired)
)

// GenerateKey builds <folder>/<yyyy>/<mm>/<uuid><ext>, keeping the lowercased extension of the original name.
func GenerateKey(folder, originalName string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return path.Join(
		strings.Trim(folder, "/"),
		now.UTC().Format("2006"),
		now.UTC().Format("01"),
		uuid.NewString()+ext,
	)
}

// IsImage reports whether the mime type is an image type.
func IsImage(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(mimeType), "image/")
}

// DeleteURLs removes the objects behind urls and returns the first error. Unknown urls are skipped.
func DeleteURLs(ctx context.Context, store BlobStore, urls []string) error {
	var firstErr error
	for _, u := range urls {
		key, ok := store.KeyFromURL(u)
		if !ok {
			continue
		}
		if err := store.Delete(ctx, key); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return firstErr
}

// Cleanup deletes already uploaded objects, used when a later step fails.
func Cleanup(ctx context.Context, store BlobStore, files []UploadedFile) error {
	var firstErr error
	for _, f := range files {
		if err := store.Delete(ctx, f.Key); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("delete %s: %w", f.Key, err)
		}
	}
	return firstErr
}
