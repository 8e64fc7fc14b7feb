package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeMessageSent = "message.sent"
	EventTypeReportFiled = "report.filed"
)

// MessageSentEvent carries the serialized message and the users who should see it live.
type MessageSentEvent struct {
	BaseEvent
	ConversationID int64       `json:"conversationId"`
	MessageID      int64       `json:"messageId"`
	SenderID       int64       `json:"senderId"`
	RecipientIDs   []int64     `json:"recipientIds"`
	Message        interface{} `json:"message"`
}

func NewMessageSentEvent(conversationID, messageID, senderID int64, recipientIDs []int64, message interface{}) *MessageSentEvent {
	return &MessageSentEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeMessageSent,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"conversation_id": conversationID,
				"message_id":      messageID,
				"sender_id":       senderID,
			},
		},
		ConversationID: conversationID,
		MessageID:      messageID,
		SenderID:       senderID,
		RecipientIDs:   recipientIDs,
		Message:        message,
	}
}

type ReportFiledEvent struct {
	BaseEvent
	ReportID   int64  `json:"reportId"`
	Category   string `json:"category"`
	Title      string `json:"title"`
	Severity   string `json:"severity"`
	ReportedBy int64  `json:"reportedBy"`
}

func NewReportFiledEvent(reportID int64, category, title, severity string, reportedBy int64) *ReportFiledEvent {
	return &ReportFiledEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeReportFiled,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"report_id":   reportID,
				"category":    category,
				"severity":    severity,
				"reported_by": reportedBy,
			},
		},
		ReportID:   reportID,
		Category:   category,
		Title:      title,
		Severity:   severity,
		ReportedBy: reportedBy,
	}
}
