package report

import (
	"time"

	"github.com/frahmantamala/projecthub/internal/core/datamodel/document"
)

type Report struct {
	ID          int64               `gorm:"primaryKey"`
	Category    string              `gorm:"column:category;not null;index"`
	ProjectID   *int64              `gorm:"column:project_id;index"`
	Title       string              `gorm:"column:title;not null"`
	Description string              `gorm:"column:description"`
	Location    string              `gorm:"column:location"`
	Severity    string              `gorm:"column:severity;not null;default:low"`
	Status      string              `gorm:"column:status;not null;default:open"`
	ReportedBy  int64               `gorm:"column:reported_by;not null"`
	ClosedBy    *int64              `gorm:"column:closed_by"`
	ClosedAt    *time.Time          `gorm:"column:closed_at"`
	Documents   []document.Document `gorm:"foreignKey:ReportID"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Report) TableName() string {
	return "reports"
}
