package project

import "time"

type Project struct {
	ID          int64      `gorm:"primaryKey"`
	Name        string     `gorm:"column:name;not null"`
	Description string     `gorm:"column:description"`
	ClientID    *int64     `gorm:"column:client_id;index"`
	ManagerID   int64      `gorm:"column:manager_id;not null;index"`
	Status      string     `gorm:"column:status;not null;default:planned"`
	StartDate   *time.Time `gorm:"column:start_date"`
	EndDate     *time.Time `gorm:"column:end_date"`
	Budget      float64    `gorm:"column:budget;default:0"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Project) TableName() string {
	return "projects"
}
