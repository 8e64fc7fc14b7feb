package worklog

import (
	"time"

	"github.com/frahmantamala/projecthub/internal"
	worklogDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/worklog"
)

const MaxHoursPerEntry = 24

type WorkLog struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	ProjectID   int64     `json:"projectId"`
	TaskID      *int64    `json:"taskId"`
	Date        time.Time `json:"date"`
	Hours       float64   `json:"hours"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProjectHours is one row of the hours summary.
type ProjectHours struct {
	ProjectID   int64   `json:"projectId" db:"project_id"`
	ProjectName string  `json:"projectName" db:"project_name"`
	Hours       float64 `json:"hours" db:"hours"`
	Entries     int64   `json:"entries" db:"entries"`
}

type Summary struct {
	From       *time.Time     `json:"from"`
	To         *time.Time     `json:"to"`
	TotalHours float64        `json:"totalHours"`
	Projects   []ProjectHours `json:"projects"`
}

var (
	ErrNotFound        = internal.NewNotFoundError("Work log not found", internal.ErrCodeWorkLogNotFound)
	ErrProjectNotFound = internal.NewNotFoundError("Project not found", internal.ErrCodeProjectNotFound)
	ErrTaskNotFound    = internal.NewNotFoundError("Task not found", internal.ErrCodeTaskNotFound)
	ErrTaskMismatch    = internal.NewValidationError("Task does not belong to the project", internal.ErrCodeProjectMismatch)
)

func ToDataModel(w *WorkLog) *worklogDatamodel.WorkLog {
	return &worklogDatamodel.WorkLog{
		ID:          w.ID,
		UserID:      w.UserID,
		ProjectID:   w.ProjectID,
		TaskID:      w.TaskID,
		Date:        w.Date,
		Hours:       w.Hours,
		Description: w.Description,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

func FromDataModel(w *worklogDatamodel.WorkLog) *WorkLog {
	return &WorkLog{
		ID:          w.ID,
		UserID:      w.UserID,
		ProjectID:   w.ProjectID,
		TaskID:      w.TaskID,
		Date:        w.Date,
		Hours:       w.Hours,
		Description: w.Description,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}
