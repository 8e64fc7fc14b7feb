package training

import (
	"time"

	"github.com/frahmantamala/projecthub/internal"
	trainingDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/training"
	coreuser "github.com/frahmantamala/projecthub/internal/core/user"
)

const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"

	ProgressComplete = 100
)

var Statuses = []string{StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled}

type Training struct {
	ID           int64               `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	TrainerID    *int64              `json:"trainerId"`
	Location     string              `json:"location"`
	StartDate    time.Time           `json:"startDate"`
	EndDate      *time.Time          `json:"endDate"`
	Progress     int                 `json:"progress"`
	Status       string              `json:"status"`
	Participants []*coreuser.Summary `json:"participants"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

var (
	ErrNotFound           = internal.NewNotFoundError("Training not found", internal.ErrCodeTrainingNotFound)
	ErrUserNotFound       = internal.NewNotFoundError("User not found", internal.ErrCodeUserNotFound)
	ErrAlreadyParticipant = internal.NewConflictError("User already participates in this training", internal.ErrCodeAlreadyMember)
	ErrNotParticipant     = internal.NewNotFoundError("User does not participate in this training", internal.ErrCodeNotParticipant)
)

func ToDataModel(t *Training) *trainingDatamodel.Training {
	return &trainingDatamodel.Training{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		TrainerID:   t.TrainerID,
		Location:    t.Location,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		Progress:    t.Progress,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func FromDataModel(t *trainingDatamodel.Training) *Training {
	return &Training{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		TrainerID:    t.TrainerID,
		Location:     t.Location,
		StartDate:    t.StartDate,
		EndDate:      t.EndDate,
		Progress:     t.Progress,
		Status:       t.Status,
		Participants: []*coreuser.Summary{},
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}
