package client

import (
	"context"
	"net/http"

	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
	"github.com/frahmantamala/projecthub/internal/transport"
	"github.com/frahmantamala/projecthub/pkg/logger"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateClientDTO) (*Client, error)
	Get(ctx context.Context, id int64) (*Client, error)
	List(ctx context.Context, filter ListFilter) (pagination.Page[*Client], error)
	Update(ctx context.Context, id int64, dto UpdateClientDTO) (*Client, error)
	Delete(ctx context.Context, id int64) error
	AssociateProject(ctx context.Context, clientID, projectID int64) (*Client, error)
}

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

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateClientDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	c, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.Service.List(r.Context(), ListFilter{
		Search: r.URL.Query().Get("search"),
		Page:   h.ParsePagination(r),
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
	c, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.URLParamInt64(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	var dto UpdateClientDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	c, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
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
	h.WriteMessage(w, http.StatusOK, "Client deleted successfully", nil)
}

// AssociateProject handles POST /clients/{id}/projects/{projectId}
func (h *Handler) AssociateProject(w http.ResponseWriter, r *http.Request) {
	id, err := h.URLParamInt64(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	projectID, err := h.URLParamInt64(r, "projectId")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	c, err := h.Service.AssociateProject(r.Context(), id, projectID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "Project associated with client", c)
}
