package task

import "time"

type Task struct {
	ID          int64      `gorm:"primaryKey"`
	ProjectID   int64      `gorm:"column:project_id;not null;index"`
	Title       string     `gorm:"column:title;not null"`
	Description string     `gorm:"column:description"`
	AssigneeID  *int64     `gorm:"column:assignee_id;index"`
	CreatedBy   int64      `gorm:"column:created_by;not null"`
	Status      string     `gorm:"column:status;not null;default:todo"`
	Priority    string     `gorm:"column:priority;not null;default:medium"`
	DueDate     *time.Time `gorm:"column:due_date"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Task) TableName() string {
	return "tasks"
}
