package worklog

import "time"

type WorkLog struct {
	ID          int64     `gorm:"primaryKey"`
	UserID      int64     `gorm:"column:user_id;not null;index"`
	ProjectID   int64     `gorm:"column:project_id;not null;index"`
	TaskID      *int64    `gorm:"column:task_id;index"`
	Date        time.Time `gorm:"column:date;not null"`
	Hours       float64   `gorm:"column:hours;not null"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (WorkLog) TableName() string {
	return "work_logs"
}
