package leave

import (
	"context"
	"net/http"

	"github.com/frahmantamala/projecthub/internal/auth"
	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
	"github.com/frahmantamala/projecthub/internal/transport"
	"github.com/frahmantamala/projecthub/pkg/logger"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateLeaveDTO, requester *auth.User) (*Leave, error)
	Get(ctx context.Context, id int64, requester *auth.User) (*Leave, error)
	List(ctx context.Context, filter ListFilter, requester *auth.User) (pagination.Page[*Leave], error)
	Update(ctx context.Context, id int64, dto UpdateLeaveDTO, requester *auth.User) (*Leave, error)
	Delete(ctx context.Context, id int64, requester *auth.User) error
	Review(ctx context.Context, id int64, dto ReviewDTO, reviewer *auth.User) (*Leave, error)
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
	var dto CreateLeaveDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	l, err := h.Service.Create(r.Context(), dto, u)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, l)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	u, err := auth.RequireUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	q := r.URL.Query()
	page, err := h.Service.List(r.Context(), ListFilter{
		UserID: transport.QueryInt64(r, "userId"),
		Status: q.Get("status"),
		Type:   q.Get("type"),
		Page:   h.ParsePagination(r),
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
	l, err := h.Service.Get(r.Context(), id, u)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, l)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	u, id, ok := h.userAndID(w, r)
	if !ok {
		return
	}
	var dto UpdateLeaveDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	l, err := h.Service.Update(r.Context(), id, dto, u)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, l)
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
	h.WriteMessage(w, http.StatusOK, "Leave request deleted", nil)
}

// Review handles PATCH /leaves/{id}/status
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	u, id, ok := h.userAndID(w, r)
	if !ok {
		return
	}
	var dto ReviewDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	l, err := h.Service.Review(r.Context(), id, dto, u)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "Leave request "+l.Status, l)
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
