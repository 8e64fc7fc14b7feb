package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/projecthub/internal/core/database"
	messagingDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/messaging"
	"github.com/frahmantamala/projecthub/internal/messaging"
	"gorm.io/gorm"
)

type MessagingRepository struct {
	db *gorm.DB
}

func NewMessagingRepository(db *gorm.DB) *MessagingRepository {
	return &MessagingRepository{db: db}
}

func (r *MessagingRepository) FindDirect(ctx context.Context, a, b int64) (*messaging.Conversation, error) {
	pair := r.db.Model(&messagingDatamodel.Participant{}).
		Select("conversation_id").
		Group("conversation_id").
		Having("COUNT(*) = 2 AND SUM(CASE WHEN user_id IN ? THEN 1 ELSE 0 END) = 2", []int64{a, b})

	var row messagingDatamodel.Conversation
	err := r.db.WithContext(ctx).
		Preload("Participants", orderParticipants).
		Where("type = ? AND id IN (?)", messaging.TypeDirect, pair).
		Order("id ASC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return messaging.ConversationFromDataModel(&row), nil
}

func (r *MessagingRepository) CreateDirect(ctx context.Context, a, b int64) (*messaging.Conversation, error) {
	key := messaging.DirectKey(a, b)
	row := &messagingDatamodel.Conversation{Type: messaging.TypeDirect, DirectKey: &key}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		row.Participants = []messagingDatamodel.Participant{
			{ConversationID: row.ID, UserID: a},
			{ConversationID: row.ID, UserID: b},
		}
		return tx.Create(&row.Participants).Error
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, messaging.ErrDirectExists
		}
		return nil, err
	}
	return messaging.ConversationFromDataModel(row), nil
}

func (r *MessagingRepository) CreateGroup(ctx context.Context, name string, creatorID int64, memberIDs []int64) (*messaging.Conversation, error) {
	row := &messagingDatamodel.Conversation{Type: messaging.TypeGroup, Name: &name, CreatedBy: &creatorID}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		row.Participants = make([]messagingDatamodel.Participant, len(memberIDs))
		for i, id := range memberIDs {
			row.Participants[i] = messagingDatamodel.Participant{ConversationID: row.ID, UserID: id}
		}
		return tx.Create(&row.Participants).Error
	})
	if err != nil {
		return nil, err
	}
	return messaging.ConversationFromDataModel(row), nil
}

func (r *MessagingRepository) GetConversation(ctx context.Context, id int64, withMessages bool) (*messaging.Conversation, error) {
	q := r.db.WithContext(ctx).Preload("Participants", orderParticipants)
	if withMessages {
		q = q.Preload("Messages", orderMessages)
	}
	var row messagingDatamodel.Conversation
	if err := q.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, messaging.ErrConversationNotFound
		}
		return nil, err
	}
	return messaging.ConversationFromDataModel(&row), nil
}

func (r *MessagingRepository) CreateMessage(ctx context.Context, m *messaging.Message) error {
	row := messaging.MessageToDataModel(m)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		return tx.Model(&messagingDatamodel.Conversation{}).
			Where("id = ?", row.ConversationID).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return err
	}
	*m = *messaging.MessageFromDataModel(row)
	return nil
}

func (r *MessagingRepository) MarkReadAndList(ctx context.Context, conversationID, userID int64) ([]*messaging.Message, error) {
	var rows []messagingDatamodel.Message
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&messagingDatamodel.Message{}).
			Where("conversation_id = ? AND receiver_id = ? AND is_read = ?", conversationID, userID, false).
			Update("is_read", true).Error
		if err != nil {
			return err
		}
		return orderMessages(tx.Where("conversation_id = ?", conversationID)).Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	out := make([]*messaging.Message, len(rows))
	for i := range rows {
		out[i] = messaging.MessageFromDataModel(&rows[i])
	}
	return out, nil
}

type unreadRow struct {
	ConversationID int64
	Count          int64
}

func (r *MessagingRepository) ListConversations(ctx context.Context, userID int64) ([]*messaging.Conversation, error) {
	db := r.db.WithContext(ctx)
	mine := r.db.Model(&messagingDatamodel.Participant{}).Select("conversation_id").Where("user_id = ?", userID)

	var rows []messagingDatamodel.Conversation
	err := db.Preload("Participants", orderParticipants).
		Where("id IN (?)", mine).
		Order("updated_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []*messaging.Conversation{}, nil
	}

	ids := make([]int64, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}

	latest := r.db.Model(&messagingDatamodel.Message{}).
		Select("MAX(id)").
		Where("conversation_id IN ?", ids).
		Group("conversation_id")
	var last []messagingDatamodel.Message
	if err := db.Where("id IN (?)", latest).Find(&last).Error; err != nil {
		return nil, err
	}
	lastByConv := make(map[int64]*messagingDatamodel.Message, len(last))
	for i := range last {
		lastByConv[last[i].ConversationID] = &last[i]
	}

	var unread []unreadRow
	err = db.Model(&messagingDatamodel.Message{}).
		Select("conversation_id, COUNT(*) AS count").
		Where("conversation_id IN ? AND receiver_id = ? AND is_read = ?", ids, userID, false).
		Group("conversation_id").
		Scan(&unread).Error
	if err != nil {
		return nil, err
	}
	unreadByConv := make(map[int64]int64, len(unread))
	for _, u := range unread {
		unreadByConv[u.ConversationID] = u.Count
	}

	out := make([]*messaging.Conversation, len(rows))
	for i := range rows {
		c := messaging.ConversationFromDataModel(&rows[i])
		if m, ok := lastByConv[c.ID]; ok {
			c.LastMessage = messaging.MessageFromDataModel(m)
		}
		count := unreadByConv[c.ID]
		c.UnreadCount = &count
		out[i] = c
	}
	return out, nil
}

func (r *MessagingRepository) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&messagingDatamodel.Message{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *MessagingRepository) AddParticipant(ctx context.Context, conversationID, userID int64) error {
	err := r.db.WithContext(ctx).Create(&messagingDatamodel.Participant{ConversationID: conversationID, UserID: userID}).Error
	if database.IsUniqueViolation(err) {
		return messaging.ErrAlreadyMember
	}
	return err
}

func (r *MessagingRepository) RemoveParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Delete(&messagingDatamodel.Participant{})
	return res.RowsAffected > 0, res.Error
}

func (r *MessagingRepository) DeleteConversation(ctx context.Context, conversationID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", conversationID).Delete(&messagingDatamodel.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("conversation_id = ?", conversationID).Delete(&messagingDatamodel.Participant{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&messagingDatamodel.Conversation{}, conversationID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return messaging.ErrConversationNotFound
		}
		return nil
	})
}

func orderParticipants(db *gorm.DB) *gorm.DB {
	return db.Order("joined_at ASC, id ASC")
}

func orderMessages(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}
