package worklog

import (
	"context"
	"net/http"

	"github.com/frahmantamala/projecthub/internal/auth"
	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
	"github.com/frahmantamala/projecthub/internal/transport"
	"github.com/frahmantamala/projecthub/pkg/logger"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateWorkLogDTO, requester *auth.User) (*WorkLog, error)
	Get(ctx context.Context, id int64, requester *auth.User) (*WorkLog, error)
	List(ctx context.Context, filter ListFilter, requester *auth.User) (pagination.Page[*WorkLog], error)
	Update(ctx context.Context, id int64, dto UpdateWorkLogDTO, requester *auth.User) (*WorkLog, error)
	Delete(ctx context.Context, id int64, requester *auth.User) error
	Summary(ctx context.Context, filter SummaryFilter, requester *auth.User) (*Summary, error)
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
	var dto CreateWorkLogDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	wl, err := h.Service.Create(r.Context(), dto, u)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, wl)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	u, err := auth.RequireUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	page, err := h.Service.List(r.Context(), ListFilter{
		ProjectID: transport.QueryInt64(r, "projectId"),
		TaskID:    transport.QueryInt64(r, "taskId"),
		UserID:    transport.QueryInt64(r, "userId"),
		From:      transport.QueryTime(r, "from"),
		To:        transport.QueryTime(r, "to"),
		Page:      h.ParsePagination(r),
	}, u)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, page)
}

// Summary handles GET /work-logs/summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	u, err := auth.RequireUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	summary, err := h.Service.Summary(r.Context(), SummaryFilter{
		UserID: transport.QueryInt64(r, "userId"),
		From:   transport.QueryTime(r, "from"),
		To:     transport.QueryTime(r, "to"),
	}, u)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	u, id, ok := h.userAndID(w, r)
	if !ok {
		return
	}
	wl, err := h.Service.Get(r.Context(), id, u)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, wl)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	u, id, ok := h.userAndID(w, r)
	if !ok {
		return
	}
	var dto UpdateWorkLogDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	wl, err := h.Service.Update(r.Context(), id, dto, u)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, wl)
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
	h.WriteMessage(w, http.StatusOK, "Work log deleted", nil)
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
