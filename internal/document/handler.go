package document

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/auth"
	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
	"github.com/frahmantamala/projecthub/internal/storage"
	"github.com/frahmantamala/projecthub/internal/transport"
	"github.com/frahmantamala/projecthub/pkg/logger"
)

type ServiceAPI interface {
	Upload(ctx context.Context, dto UploadDTO, uploader *auth.User) ([]*Document, error)
	Get(ctx context.Context, id int64) (*Document, error)
	List(ctx context.Context, filter ListFilter) (pagination.Page[*Document], error)
	Attach(ctx context.Context, id int64, dto AttachDTO) (*Document, error)
	Update(ctx context.Context, id int64, dto UpdateDocumentDTO) (*Document, error)
	Delete(ctx context.Context, id int64) error
	// Discard removes stored files that will not be recorded.
	Discard(ctx context.Context, files []storage.UploadedFile)
}

// Handler serves documents. Upload and Update run behind storage.UploadMiddleware.
type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		Service:     svc,
	}
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	u, err := auth.RequireUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	dto := UploadDTO{
		Name:  r.FormValue("name"),
		Files: storage.UploadedFilesFromContext(r.Context()),
	}
	if dto.ReportID, err = formInt64(r, "reportId"); err == nil {
		dto.ProjectID, err = formInt64(r, "projectId")
	}
	if err != nil {
		h.discard(r, dto.Files)
		h.HandleServiceError(w, err)
		return
	}

	docs, err := h.Service.Upload(r.Context(), dto, u)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteMessage(w, http.StatusCreated, "Documents uploaded successfully", docs)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.Service.List(r.Context(), ListFilter{
		ReportID:  transport.QueryInt64(r, "reportId"),
		ProjectID: transport.QueryInt64(r, "projectId"),
		Search:    r.URL.Query().Get("search"),
		Page:      h.ParsePagination(r),
	})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.URLParamInt64(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	doc, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, doc)
}

// Attach handles PATCH /documents/{id}/report
func (h *Handler) Attach(w http.ResponseWriter, r *http.Request) {
	id, err := h.URLParamInt64(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	var dto AttachDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	doc, err := h.Service.Attach(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, doc)
}

// Update accepts JSON, or multipart when the file is replaced.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	files := storage.UploadedFilesFromContext(r.Context())
	id, err := h.URLParamInt64(r, "id")
	if err != nil {
		h.discard(r, files)
		h.HandleServiceError(w, err)
		return
	}

	var dto UpdateDocumentDTO
	if r.MultipartForm != nil {
		err = formUpdate(r, &dto, files)
	} else {
		err = h.DecodeJSON(r, &dto)
	}
	if err != nil {
		h.discard(r, files)
		h.HandleServiceError(w, err)
		return
	}

	doc, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.URLParamInt64(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "Document deleted successfully", nil)
}

func (h *Handler) discard(r *http.Request, files []storage.UploadedFile) {
	if len(files) > 0 {
		h.Service.Discard(r.Context(), files)
	}
}

func formUpdate(r *http.Request, dto *UpdateDocumentDTO, files []storage.UploadedFile) error {
	if name, ok := r.MultipartForm.Value["name"]; ok && len(name) > 0 {
		dto.Name = &name[0]
	}
	var err error
	if dto.ReportID, err = formInt64(r, "reportId"); err != nil {
		return err
	}
	if dto.ProjectID, err = formInt64(r, "projectId"); err != nil {
		return err
	}
	if len(files) > 1 {
		return internal.NewValidationError("only one file may replace a document", internal.ErrCodeValidationFailed)
	}
	if len(files) == 1 {
		dto.File = &files[0]
	}
	return nil
}

func formInt64(r *http.Request, name string) (*int64, error) {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return nil, internal.NewValidationError("invalid "+name, internal.ErrCodeInvalidID)
	}
	return &v, nil
}
