package storage

import (
	"context"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/transport"
)

type uploadedFilesKey struct{}

const defaultMaxUploadBytes = 32 << 20

// FileFields are the multipart fields scanned for files, in order.
var FileFields = []string{"files", "file"}

func WithUploadedFiles(ctx context.Context, files []UploadedFile) context.Context {
	return context.WithValue(ctx, uploadedFilesKey{}, files)
}

func UploadedFilesFromContext(ctx context.Context) []UploadedFile {
	files, _ := ctx.Value(uploadedFilesKey{}).([]UploadedFile)
	return files
}

// UploadMiddleware stores every multipart file under folder and hands the results to the next handler
// through the request context. Non-multipart requests pass through untouched. When one upload fails the
// files already stored for the request are deleted.
type UploadMiddleware struct {
	*transport.BaseHandler
	store    BlobStore
	maxBytes int64
	now      func() time.Time
}

func NewUploadMiddleware(store BlobStore, maxBytes int64, logger *slog.Logger) *UploadMiddleware {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	return &UploadMiddleware{
		BaseHandler: transport.NewBaseHandler(logger),
		store:       store,
		maxBytes:    maxBytes,
		now:         time.Now,
	}
}

func (m *UploadMiddleware) Handle(folder string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isMultipart(r) {
				next.ServeHTTP(w, r)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, m.maxBytes)
			if err := r.ParseMultipartForm(m.maxBytes); err != nil {
				m.HandleServiceError(w, internal.NewValidationError("invalid multipart form", internal.ErrCodeValidationFailed).WithCause(err))
				return
			}

			files, err := m.storeAll(r.Context(), folder, r.MultipartForm)
			if err != nil {
				m.HandleServiceError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUploadedFiles(r.Context(), files)))
		})
	}
}

func (m *UploadMiddleware) storeAll(ctx context.Context, folder string, form *multipart.Form) ([]UploadedFile, error) {
	var uploaded []UploadedFile
	for _, field := range FileFields {
		for _, header := range form.File[field] {
			f, err := m.storeOne(ctx, folder, header)
			if err != nil {
				m.Logger.Error("upload failed, removing stored files", "file", header.Filename, "stored", len(uploaded), "error", err)
				if cerr := Cleanup(context.WithoutCancel(ctx), m.store, uploaded); cerr != nil {
					m.Logger.Error("upload cleanup failed", "error", cerr)
				}
				return nil, ErrUploadFailed.WithCause(err)
			}
			uploaded = append(uploaded, f)
		}
	}
	return uploaded, nil
}

func (m *UploadMiddleware) storeOne(ctx context.Context, folder string, header *multipart.FileHeader) (UploadedFile, error) {
	src, err := header.Open()
	if err != nil {
		return UploadedFile{}, err
	}
	defer src.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(header.Filename))); byExt != "" {
			mimeType = byExt
		}
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	key := GenerateKey(folder, header.Filename, m.now())
	url, err := m.store.Upload(ctx, key, src, header.Size, mimeType)
	if err != nil {
		return UploadedFile{}, err
	}
	return UploadedFile{
		URL:          url,
		Key:          key,
		MimeType:     mimeType,
		Size:         header.Size,
		OriginalName: header.Filename,
	}, nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}
