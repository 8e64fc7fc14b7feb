package task

import (
	"time"

	"github.com/frahmantamala/projecthub/internal"
	taskDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/task"
)

const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusReview     = "review"
	StatusDone       = "done"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

var (
	Statuses   = []string{StatusTodo, StatusInProgress, StatusReview, StatusDone}
	Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}
)

type Task struct {
	ID          int64      `json:"id"`
	ProjectID   int64      `json:"projectId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssigneeID  *int64     `json:"assigneeId"`
	CreatedBy   int64      `json:"createdBy"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// VisibleTo reports whether the user takes part in the task.
func (t *Task) VisibleTo(userID int64) bool {
	return t.CreatedBy == userID || (t.AssigneeID != nil && *t.AssigneeID == userID)
}

var (
	ErrNotFound         = internal.NewNotFoundError("Task not found", internal.ErrCodeTaskNotFound)
	ErrProjectNotFound  = internal.NewNotFoundError("Project not found", internal.ErrCodeProjectNotFound)
	ErrAssigneeNotFound = internal.NewNotFoundError("Assignee not found", internal.ErrCodeUserNotFound)
)

func ToDataModel(t *Task) *taskDatamodel.Task {
	return &taskDatamodel.Task{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		AssigneeID:  t.AssigneeID,
		CreatedBy:   t.CreatedBy,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func FromDataModel(t *taskDatamodel.Task) *Task {
	return &Task{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		AssigneeID:  t.AssigneeID,
		CreatedBy:   t.CreatedBy,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
