package training

import "time"

type Training struct {
	ID           int64                 `gorm:"primaryKey"`
	Title        string                `gorm:"column:title;not null"`
	Description  string                `gorm:"column:description"`
	TrainerID    *int64                `gorm:"column:trainer_id"`
	Location     string                `gorm:"column:location"`
	StartDate    time.Time             `gorm:"column:start_date;not null"`
	EndDate      *time.Time            `gorm:"column:end_date"`
	Progress     int                   `gorm:"column:progress;not null;default:0"`
	Status       string                `gorm:"column:status;not null;default:scheduled"`
	Participants []TrainingParticipant `gorm:"foreignKey:TrainingID"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (Training) TableName() string {
	return "trainings"
}

type TrainingParticipant struct {
	ID         int64     `gorm:"primaryKey"`
	TrainingID int64     `gorm:"column:training_id;not null;uniqueIndex:idx_training_participant"`
	UserID     int64     `gorm:"column:user_id;not null;uniqueIndex:idx_training_participant"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (TrainingParticipant) TableName() string {
	return "training_participants"
}
