package messaging

import (
	"context"
	"net/http"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/auth"
	"github.com/frahmantamala/projecthub/internal/storage"
	"github.com/frahmantamala/projecthub/internal/transport"
	"github.com/frahmantamala/projecthub/pkg/logger"
)

type ServiceAPI interface {
	CreateOrGetConversation(ctx context.Context, currentUserID int64, dto CreateConversationDTO) (*Conversation, bool, error)
	CreateGroup(ctx context.Context, dto CreateGroupDTO, creatorID int64) (*Conversation, error)
	SendMessage(ctx context.Context, conversationID, senderID int64, dto SendMessageDTO) (*Message, error)
	GetMessages(ctx context.Context, conversationID, userID int64) ([]*Message, error)
	ListConversations(ctx context.Context, userID int64) ([]*Conversation, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	AddMember(ctx context.Context, conversationID, requesterID int64, dto AddMemberDTO) (*Conversation, error)
	RemoveMember(ctx context.Context, conversationID, requesterID, userID int64) (*Conversation, error)
	DeleteGroup(ctx context.Context, conversationID, requesterID int64) error
	Discard(ctx context.Context, files []storage.UploadedFile)
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

// CreateConversation handles POST /messages/conversations
func (h *Handler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	u, err := auth.RequireUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	var dto CreateConversationDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	conv, created, err := h.Service.CreateOrGetConversation(r.Context(), u.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.WriteJSON(w, status, conv)
}

// CreateGroup handles POST /messages/group
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	u, err := auth.RequireUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	var dto CreateGroupDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	conv, err := h.Service.CreateGroup(r.Context(), dto, u.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteMessage(w, http.StatusCreated, "Group created successfully", conv)
}

func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	u, err := auth.RequireUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	convs, err := h.Service.ListConversations(r.Context(), u.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"data": convs})
}

func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	u, err := auth.RequireUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	count, err := h.Service.UnreadCount(r.Context(), u.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]int64{"unreadCount": count})
}

// SendMessage accepts JSON {content} or multipart with content and one file.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	files := storage.UploadedFilesFromContext(r.Context())
	u, id, err := h.userAndID(r)
	if err == nil && len(files) > 1 {
		err = internal.NewValidationError("only one file may be attached", internal.ErrCodeValidationFailed)
	}
	if err != nil {
		h.Service.Discard(r.Context(), files)
		h.HandleServiceError(w, err)
		return
	}

	var dto SendMessageDTO
	if r.MultipartForm != nil {
		dto.Content = r.FormValue("content")
		if len(files) == 1 {
			dto.File = &files[0]
		}
	} else if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	msg, err := h.Service.SendMessage(r.Context(), id, u.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, msg)
}

func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	u, id, err := h.userAndID(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	msgs, err := h.Service.GetMessages(r.Context(), id, u.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"data": msgs})
}

func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	u, id, err := h.userAndID(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	var dto AddMemberDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	conv, err := h.Service.AddMember(r.Context(), id, u.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteMessage(w, http.StatusCreated, "Member added successfully", conv)
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	u, id, err := h.userAndID(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	userID, err := h.URLParamInt64(r, "userId")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	conv, err := h.Service.RemoveMember(r.Context(), id, u.ID, userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "Member removed successfully", conv)
}

func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	u, id, err := h.userAndID(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if err := h.Service.DeleteGroup(r.Context(), id, u.ID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "Group deleted successfully", nil)
}

func (h *Handler) userAndID(r *http.Request) (*auth.User, int64, error) {
	u, err := auth.RequireUser(r.Context())
	if err != nil {
		return nil, 0, err
	}
	id, err := h.URLParamInt64(r, "id")
	if err != nil {
		return nil, 0, err
	}
	return u, id, nil
}
