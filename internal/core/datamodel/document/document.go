package document

import (
	"time"

	"gorm.io/datatypes"
)

type Document struct {
	ID         int64                       `gorm:"primaryKey"`
	Category   string                      `gorm:"column:category;not null;index"`
	Name       string                      `gorm:"column:name;not null"`
	URLs       datatypes.JSONSlice[string] `gorm:"column:urls;not null"`
	UploadedBy int64                       `gorm:"column:uploaded_by;not null"`
	ReportID   *int64                      `gorm:"column:report_id;index"`
	ProjectID  *int64                      `gorm:"column:project_id;index"`
	MimeType   string                      `gorm:"column:mime_type"`
	Size       int64                       `gorm:"column:size"`
	CreatedAt  time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}

func (Document) TableName() string {
	return "documents"
}
