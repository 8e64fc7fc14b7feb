package messaging

import "time"

const (
	ConversationTypeDirect = "direct"
	ConversationTypeGroup  = "group"

	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeFile  = "file"
)

type Conversation struct {
	ID           int64         `gorm:"primaryKey"`
	Type         string        `gorm:"column:type;not null"`
	Name         *string       `gorm:"column:name"`
	CreatedBy    *int64        `gorm:"column:created_by"`
	DirectKey    *string       `gorm:"column:direct_key;uniqueIndex"`
	Participants []Participant `gorm:"foreignKey:ConversationID"`
	Messages     []Message     `gorm:"foreignKey:ConversationID"`
	CreatedAt    time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

func (Conversation) TableName() string {
	return "conversations"
}

type Participant struct {
	ID             int64     `gorm:"primaryKey"`
	ConversationID int64     `gorm:"column:conversation_id;not null;uniqueIndex:idx_conversation_user"`
	UserID         int64     `gorm:"column:user_id;not null;uniqueIndex:idx_conversation_user;index"`
	JoinedAt       time.Time `gorm:"column:joined_at;autoCreateTime"`
}

func (Participant) TableName() string {
	return "participants"
}

type Message struct {
	ID             int64     `gorm:"primaryKey"`
	ConversationID int64     `gorm:"column:conversation_id;not null;index"`
	SenderID       int64     `gorm:"column:sender_id;not null"`
	ReceiverID     *int64    `gorm:"column:receiver_id;index"`
	Content        string    `gorm:"column:content"`
	Type           string    `gorm:"column:type;not null;default:text"`
	FileURL        *string   `gorm:"column:file_url"`
	IsRead         bool      `gorm:"column:is_read;not null;default:false"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Message) TableName() string {
	return "messages"
}
