package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/core/events"
	coreuser "github.com/frahmantamala/projecthub/internal/core/user"
	"github.com/frahmantamala/projecthub/internal/storage"
)

type RepositoryAPI interface {
	// FindDirect returns the conversation whose participants are exactly a and b, or nil.
	FindDirect(ctx context.Context, a, b int64) (*Conversation, error)
	CreateDirect(ctx context.Context, a, b int64) (*Conversation, error)
	CreateGroup(ctx context.Context, name string, creatorID int64, memberIDs []int64) (*Conversation, error)
	GetConversation(ctx context.Context, id int64, withMessages bool) (*Conversation, error)
	// CreateMessage stores the message and touches the conversation.
	CreateMessage(ctx context.Context, m *Message) error
	// MarkReadAndList marks messages addressed to userID read and returns the whole thread.
	MarkReadAndList(ctx context.Context, conversationID, userID int64) ([]*Message, error)
	ListConversations(ctx context.Context, userID int64) ([]*Conversation, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	AddParticipant(ctx context.Context, conversationID, userID int64) error
	RemoveParticipant(ctx context.Context, conversationID, userID int64) (bool, error)
	DeleteConversation(ctx context.Context, conversationID int64) error
}

type UserDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
	Summaries(ctx context.Context, ids []int64) (map[int64]*coreuser.Summary, error)
}

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo      RepositoryAPI
	users     UserDirectory
	locker    PairLocker
	publisher Publisher
	store     storage.BlobStore
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, users UserDirectory, locker PairLocker, publisher Publisher, store storage.BlobStore, logger *slog.Logger) *Service {
	if locker == nil {
		locker = NewKeyedMutex()
	}
	return &Service{
		repo:      repo,
		users:     users,
		locker:    locker,
		publisher: publisher,
		store:     store,
		logger:    logger,
	}
}

// CreateOrGetConversation returns the direct conversation between the two users, creating it
// when none exists. created reports whether this call made it.
func (s *Service) CreateOrGetConversation(ctx context.Context, currentUserID int64, dto CreateConversationDTO) (conv *Conversation, created bool, err error) {
	if err := dto.Validate(); err != nil {
		return nil, false, err
	}
	if dto.RecipientID == currentUserID {
		return nil, false, ErrSelfConversation
	}
	if err := s.ensureUser(ctx, dto.RecipientID); err != nil {
		return nil, false, err
	}

	unlock, err := s.locker.Lock(ctx, "direct:"+DirectKey(currentUserID, dto.RecipientID))
	if err != nil {
		return nil, false, internal.NewInternalError("failed to lock conversation pair", err)
	}
	defer unlock()

	existing, err := s.repo.FindDirect(ctx, currentUserID, dto.RecipientID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		existing, err = s.repo.CreateDirect(ctx, currentUserID, dto.RecipientID)
		switch {
		case errors.Is(err, ErrDirectExists):
			s.logger.Info("direct conversation created concurrently, reusing it", "user_id", currentUserID, "recipient_id", dto.RecipientID)
			existing, err = s.repo.FindDirect(ctx, currentUserID, dto.RecipientID)
			if err == nil && existing == nil {
				err = ErrConversationNotFound
			}
		case err == nil:
			created = true
			s.logger.Info("direct conversation created", "conversation_id", existing.ID, "user_id", currentUserID, "recipient_id", dto.RecipientID)
		}
		if err != nil {
			return nil, false, err
		}
	}

	conv, err = s.repo.GetConversation(ctx, existing.ID, true)
	if err != nil {
		return nil, false, err
	}
	if err := s.hydrate(ctx, conv); err != nil {
		return nil, false, err
	}
	return conv, created, nil
}

func (s *Service) CreateGroup(ctx context.Context, dto CreateGroupDTO, creatorID int64) (*Conversation, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	members := make([]int64, 0, len(dto.UserIDs))
	seen := map[int64]bool{creatorID: true}
	for _, id := range dto.UserIDs {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		members = append(members, id)
	}
	if len(members) < MinGroupMembers {
		return nil, internal.NewValidationFieldError("userIds", "a group needs at least 2 other members", internal.ErrCodeValidationFailed)
	}

	found, err := s.users.Summaries(ctx, members)
	if err != nil {
		return nil, internal.NewInternalError("failed to load users", err)
	}
	for _, id := range members {
		if _, ok := found[id]; !ok {
			return nil, ErrUserNotFound.WithMessage(fmt.Sprintf("User %d not found", id))
		}
	}

	conv, err := s.repo.CreateGroup(ctx, dto.Name, creatorID, append([]int64{creatorID}, members...))
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, conv); err != nil {
		return nil, err
	}
	s.logger.Info("group created", "conversation_id", conv.ID, "created_by", creatorID, "members", len(conv.ParticipantIDs))
	return conv, nil
}

// SendMessage stores a message from a participant and announces it on the event bus.
// An attached file is removed from storage when the message is rejected.
func (s *Service) SendMessage(ctx context.Context, conversationID, senderID int64, dto SendMessageDTO) (msg *Message, err error) {
	defer func() {
		if err != nil && dto.File != nil {
			s.Discard(ctx, []storage.UploadedFile{*dto.File})
		}
	}()

	conv, err := s.repo.GetConversation(ctx, conversationID, false)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(senderID) {
		return nil, ErrNotParticipant
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	msg = &Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		ReceiverID:     conv.OtherParticipant(senderID),
		Content:        dto.Content,
		Type:           dto.MessageType(),
	}
	if dto.File != nil {
		url := dto.File.URL
		msg.FileURL = &url
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.hydrateMessages(ctx, []*Message{msg}); err != nil {
		s.logger.Warn("failed to load message participants", "message_id", msg.ID, "error", err)
	}

	recipients := make([]int64, 0, len(conv.ParticipantIDs))
	for _, id := range conv.ParticipantIDs {
		if id != senderID {
			recipients = append(recipients, id)
		}
	}
	if err := s.publisher.Publish(ctx, events.NewMessageSentEvent(conv.ID, msg.ID, senderID, recipients, msg)); err != nil {
		s.logger.Warn("message.sent publish failed", "message_id", msg.ID, "error", err)
	}
	s.logger.Debug("message sent", "conversation_id", conv.ID, "message_id", msg.ID, "type", msg.Type)
	return msg, nil
}

func (s *Service) GetMessages(ctx context.Context, conversationID, userID int64) ([]*Message, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID, false)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	msgs, err := s.repo.MarkReadAndList(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.hydrateMessages(ctx, msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *Service) ListConversations(ctx context.Context, userID int64) ([]*Conversation, error) {
	convs, err := s.repo.ListConversations(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, convs...); err != nil {
		return nil, err
	}
	return convs, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *Service) AddMember(ctx context.Context, conversationID, requesterID int64, dto AddMemberDTO) (*Conversation, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	conv, err := s.group(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(requesterID) {
		return nil, ErrNotParticipant
	}
	if err := s.ensureUser(ctx, dto.UserID); err != nil {
		return nil, err
	}
	if conv.HasParticipant(dto.UserID) {
		return nil, ErrAlreadyMember
	}
	if err := s.repo.AddParticipant(ctx, conversationID, dto.UserID); err != nil {
		return nil, err
	}
	s.logger.Info("group member added", "conversation_id", conversationID, "user_id", dto.UserID, "added_by", requesterID)
	return s.reload(ctx, conversationID)
}

func (s *Service) RemoveMember(ctx context.Context, conversationID, requesterID, userID int64) (*Conversation, error) {
	conv, err := s.group(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if userID == requesterID {
		return nil, ErrCannotRemoveSelf
	}
	if !isCreator(conv, requesterID) {
		return nil, ErrNotCreator
	}
	removed, err := s.repo.RemoveParticipant(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, ErrNotMember
	}
	s.logger.Info("group member removed", "conversation_id", conversationID, "user_id", userID, "removed_by", requesterID)
	return s.reload(ctx, conversationID)
}

func (s *Service) DeleteGroup(ctx context.Context, conversationID, requesterID int64) error {
	conv, err := s.group(ctx, conversationID)
	if err != nil {
		return err
	}
	if !isCreator(conv, requesterID) {
		return ErrNotCreator
	}
	if err := s.repo.DeleteConversation(ctx, conversationID); err != nil {
		return err
	}
	s.logger.Info("group deleted", "conversation_id", conversationID, "deleted_by", requesterID)
	return nil
}

// Discard removes uploaded attachments that will not be stored with a message.
func (s *Service) Discard(ctx context.Context, files []storage.UploadedFile) {
	if s.store == nil || len(files) == 0 {
		return
	}
	if err := storage.Cleanup(context.WithoutCancel(ctx), s.store, files); err != nil {
		s.logger.Error("failed to remove rejected attachment", "error", err)
	}
}

func (s *Service) group(ctx context.Context, id int64) (*Conversation, error) {
	conv, err := s.repo.GetConversation(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if conv.Type != TypeGroup {
		return nil, ErrNotGroup
	}
	return conv, nil
}

func (s *Service) reload(ctx context.Context, id int64) (*Conversation, error) {
	conv, err := s.repo.GetConversation(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *Service) ensureUser(ctx context.Context, id int64) error {
	ok, err := s.users.Exists(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to check user", err)
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

// hydrate fills participant and message user summaries with one directory lookup.
func (s *Service) hydrate(ctx context.Context, convs ...*Conversation) error {
	var ids []int64
	for _, c := range convs {
		ids = append(ids, c.ParticipantIDs...)
		for _, m := range c.Messages {
			ids = append(ids, messageUsers(m)...)
		}
		if c.LastMessage != nil {
			ids = append(ids, messageUsers(c.LastMessage)...)
		}
	}
	found, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return internal.NewInternalError("failed to load participants", err)
	}

	for _, c := range convs {
		c.Participants = make([]*coreuser.Summary, 0, len(c.ParticipantIDs))
		for _, id := range c.ParticipantIDs {
			if u, ok := found[id]; ok {
				c.Participants = append(c.Participants, u)
			}
		}
		for _, m := range c.Messages {
			fillMessage(m, found)
		}
		if c.LastMessage != nil {
			fillMessage(c.LastMessage, found)
		}
	}
	return nil
}

func (s *Service) hydrateMessages(ctx context.Context, msgs []*Message) error {
	var ids []int64
	for _, m := range msgs {
		ids = append(ids, messageUsers(m)...)
	}
	found, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return internal.NewInternalError("failed to load message users", err)
	}
	for _, m := range msgs {
		fillMessage(m, found)
	}
	return nil
}

func messageUsers(m *Message) []int64 {
	if m.ReceiverID != nil {
		return []int64{m.SenderID, *m.ReceiverID}
	}
	return []int64{m.SenderID}
}

func fillMessage(m *Message, users map[int64]*coreuser.Summary) {
	m.Sender = users[m.SenderID]
	if m.ReceiverID != nil {
		m.Receiver = users[*m.ReceiverID]
	}
}

func isCreator(c *Conversation, userID int64) bool {
	return c.CreatedBy != nil && *c.CreatedBy == userID
}
