package task

import (
	"context"
	"net/http"

	"github.com/frahmantamala/projecthub/internal/auth"
	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
	"github.com/frahmantamala/projecthub/internal/transport"
	"github.com/frahmantamala/projecthub/pkg/logger"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateTaskDTO, requester *auth.User) (*Task, error)
	Get(ctx context.Context, id int64, requester *auth.User) (*Task, error)
	List(ctx context.Context, filter ListFilter, requester *auth.User) (pagination.Page[*Task], error)
	Update(ctx context.Context, id int64, dto UpdateTaskDTO, requester *auth.User) (*Task, error)
	UpdateStatus(ctx context.Context, id int64, dto UpdateStatusDTO, requester *auth.User) (*Task, error)
	Delete(ctx context.Context, id int64, requester *auth.User) error
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
	u, err := auth.RequireUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	var dto CreateTaskDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	t, err := h.Service.Create(r.Context(), dto, u)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	u, err := auth.RequireUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	q := r.URL.Query()
	page, err := h.Service.List(r.Context(), ListFilter{
		ProjectID:  transport.QueryInt64(r, "projectId"),
		Status:     q.Get("status"),
		AssigneeID: transport.QueryInt64(r, "assigneeId"),
		Priority:   q.Get("priority"),
		Page:       h.ParsePagination(r),
	}, u)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	u, id, ok := h.userAndID(w, r)
	if !ok {
		return
	}
	t, err := h.Service.Get(r.Context(), id, u)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	u, id, ok := h.userAndID(w, r)
	if !ok {
		return
	}
	var dto UpdateTaskDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	t, err := h.Service.Update(r.Context(), id, dto, u)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

// UpdateStatus handles PATCH /tasks/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	u, id, ok := h.userAndID(w, r)
	if !ok {
		return
	}
	var dto UpdateStatusDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	t, err := h.Service.UpdateStatus(r.Context(), id, dto, u)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "Task status updated", t)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	u, id, ok := h.userAndID(w, r)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id, u); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "Task deleted successfully", nil)
}

func (h *Handler) userAndID(w http.ResponseWriter, r *http.Request) (*auth.User, int64, bool) {
	u, err := auth.RequireUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return nil, 0, false
	}
	id, err := h.URLParamInt64(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return nil, 0, false
	}
	return u, id, true
}
