package messaging

import (
	"strings"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/core/common/validation"
	"github.com/frahmantamala/projecthub/internal/storage"
)

type CreateConversationDTO struct {
	RecipientID int64 `json:"recipientId"`
}

func (d CreateConversationDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("recipientId", d.RecipientID).MinInt(1, internal.ErrCodeInvalidID)
	return v.Err()
}

type CreateGroupDTO struct {
	Name    string  `json:"name"`
	UserIDs []int64 `json:"userIds"`
}

func (d *CreateGroupDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	return v.Err()
}

type SendMessageDTO struct {
	Content string `json:"content"`
	// File is set when the message carries an uploaded attachment.
	File *storage.UploadedFile `json:"-"`
}

func (d *SendMessageDTO) Validate() error {
	d.Content = strings.TrimSpace(d.Content)
	if d.Content == "" && d.File == nil {
		return ErrEmptyMessage
	}
	v := validation.NewValidator()
	v.Field("content", d.Content).MaxLength(5000)
	return v.Err()
}

// MessageType derives the stored type from the attachment.
func (d SendMessageDTO) MessageType() string {
	switch {
	case d.File == nil:
		return MessageText
	case storage.IsImage(d.File.MimeType):
		return MessageImage
	default:
		return MessageFile
	}
}

type AddMemberDTO struct {
	UserID int64 `json:"userId"`
}

func (d AddMemberDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("userId", d.UserID).MinInt(1, internal.ErrCodeInvalidID)
	return v.Err()
}
