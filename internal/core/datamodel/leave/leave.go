package leave

import "time"

type Leave struct {
	ID         int64      `gorm:"primaryKey"`
	UserID     int64      `gorm:"column:user_id;not null;index"`
	Type       string     `gorm:"column:type;not null"`
	StartDate  time.Time  `gorm:"column:start_date;not null"`
	EndDate    time.Time  `gorm:"column:end_date;not null"`
	Reason     string     `gorm:"column:reason"`
	Status     string     `gorm:"column:status;not null;default:pending"`
	ReviewedBy *int64     `gorm:"column:reviewed_by"`
	ReviewNote string     `gorm:"column:review_note"`
	ReviewedAt *time.Time `gorm:"column:reviewed_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Leave) TableName() string {
	return "leaves"
}
