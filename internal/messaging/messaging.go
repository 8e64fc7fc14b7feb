package messaging

import (
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/projecthub/internal"
	messagingDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/messaging"
	coreuser "github.com/frahmantamala/projecthub/internal/core/user"
)

const (
	TypeDirect = messagingDatamodel.ConversationTypeDirect
	TypeGroup  = messagingDatamodel.ConversationTypeGroup

	MessageText  = messagingDatamodel.MessageTypeText
	MessageImage = messagingDatamodel.MessageTypeImage
	MessageFile  = messagingDatamodel.MessageTypeFile

	// MinGroupMembers counts the other members a group needs besides its creator.
	MinGroupMembers = 2
)

type Conversation struct {
	ID             int64               `json:"id"`
	Type           string              `json:"type"`
	Name           *string             `json:"name,omitempty"`
	CreatedBy      *int64              `json:"createdBy,omitempty"`
	ParticipantIDs []int64             `json:"-"`
	Participants   []*coreuser.Summary `json:"participants"`
	Messages       []*Message          `json:"messages,omitempty"`
	LastMessage    *Message            `json:"lastMessage,omitempty"`
	UnreadCount    *int64              `json:"unreadCount,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

func (c *Conversation) HasParticipant(userID int64) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the participant of a direct conversation that is not userID.
func (c *Conversation) OtherParticipant(userID int64) *int64 {
	if c.Type != TypeDirect {
		return nil
	}
	for _, id := range c.ParticipantIDs {
		if id != userID {
			other := id
			return &other
		}
	}
	return nil
}

type Message struct {
	ID             int64             `json:"id"`
	ConversationID int64             `json:"conversationId"`
	SenderID       int64             `json:"senderId"`
	ReceiverID     *int64            `json:"receiverId"`
	Content        string            `json:"content"`
	Type           string            `json:"type"`
	FileURL        *string           `json:"fileUrl"`
	IsRead         bool              `json:"isRead"`
	Sender         *coreuser.Summary `json:"sender,omitempty"`
	Receiver       *coreuser.Summary `json:"receiver,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

var (
	ErrConversationNotFound = internal.NewNotFoundError("Conversation not found", internal.ErrCodeConversationNotFound)
	ErrUserNotFound         = internal.NewNotFoundError("User not found", internal.ErrCodeUserNotFound)
	ErrSelfConversation     = internal.NewValidationError("Cannot start a conversation with yourself", internal.ErrCodeSelfConversation)
	ErrNotParticipant       = internal.NewForbiddenError("You are not a participant of this conversation", internal.ErrCodeNotParticipant)
	ErrNotGroup             = internal.NewValidationError("Conversation is not a group", internal.ErrCodeNotGroup)
	ErrEmptyMessage         = internal.NewValidationError("Message content or file is required", internal.ErrCodeEmptyMessage)
	ErrAlreadyMember        = internal.NewConflictError("User is already a member of this group", internal.ErrCodeAlreadyMember)
	ErrNotMember            = internal.NewNotFoundError("User is not a member of this group", internal.ErrCodeNotMember)
	ErrCannotRemoveSelf     = internal.NewValidationError("You cannot remove yourself from the group", internal.ErrCodeCannotRemoveSelf)
	ErrNotCreator           = internal.NewForbiddenError("Only the group creator can do this", internal.ErrCodeUnauthorizedAccess)

	// ErrDirectExists is returned by the repository when another request created the pair first.
	ErrDirectExists = errors.New("direct conversation already exists")
)

// DirectKey orders the pair so A->B and B->A share one key.
func DirectKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

func ConversationFromDataModel(c *messagingDatamodel.Conversation) *Conversation {
	out := &Conversation{
		ID:        c.ID,
		Type:      c.Type,
		Name:      c.Name,
		CreatedBy: c.CreatedBy,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	out.ParticipantIDs = make([]int64, len(c.Participants))
	for i, p := range c.Participants {
		out.ParticipantIDs[i] = p.UserID
	}
	if len(c.Messages) > 0 {
		out.Messages = make([]*Message, len(c.Messages))
		for i := range c.Messages {
			out.Messages[i] = MessageFromDataModel(&c.Messages[i])
		}
	}
	return out
}

func MessageToDataModel(m *Message) *messagingDatamodel.Message {
	return &messagingDatamodel.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		ReceiverID:     m.ReceiverID,
		Content:        m.Content,
		Type:           m.Type,
		FileURL:        m.FileURL,
		IsRead:         m.IsRead,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func MessageFromDataModel(m *messagingDatamodel.Message) *Message {
	return &Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		ReceiverID:     m.ReceiverID,
		Content:        m.Content,
		Type:           m.Type,
		FileURL:        m.FileURL,
		IsRead:         m.IsRead,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
