package task

import (
	"github.com/frahmantamala/projecthub/internal/core/common/datetime"
	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
	"github.com/frahmantamala/projecthub/internal/core/common/validation"
)

type CreateTaskDTO struct {
	ProjectID   int64          `json:"projectId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	AssigneeID  *int64         `json:"assigneeId,omitempty"`
	Status      string         `json:"status"`
	Priority    string         `json:"priority"`
	DueDate     *datetime.Date `json:"dueDate,omitempty"`
}

func (d *CreateTaskDTO) Validate() error {
	if d.Status == "" {
		d.Status = StatusTodo
	}
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	v := validation.NewValidator()
	v.Field("projectId", d.ProjectID).Required()
	v.Field("title", d.Title).Required().MaxLength(200)
	v.Field("status", d.Status).OneOf(Statuses...)
	v.Field("priority", d.Priority).OneOf(Priorities...)
	return v.Err()
}

type UpdateTaskDTO struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	AssigneeID  *int64         `json:"assigneeId,omitempty"`
	Status      *string        `json:"status,omitempty"`
	Priority    *string        `json:"priority,omitempty"`
	DueDate     *datetime.Date `json:"dueDate,omitempty"`
}

func (d *UpdateTaskDTO) Validate() error {
	v := validation.NewValidator()
	if d.Title != nil {
		v.Field("title", *d.Title).Required().MaxLength(200)
	}
	if d.Status != nil {
		v.Field("status", *d.Status).Required().OneOf(Statuses...)
	}
	if d.Priority != nil {
		v.Field("priority", *d.Priority).Required().OneOf(Priorities...)
	}
	return v.Err()
}

func (d UpdateTaskDTO) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if d.Title != nil {
		fields["title"] = *d.Title
	}
	if d.Description != nil {
		fields["description"] = *d.Description
	}
	if d.AssigneeID != nil {
		fields["assignee_id"] = *d.AssigneeID
	}
	if d.Status != nil {
		fields["status"] = *d.Status
	}
	if d.Priority != nil {
		fields["priority"] = *d.Priority
	}
	if d.DueDate != nil {
		fields["due_date"] = d.DueDate.Time
	}
	return fields
}

type UpdateStatusDTO struct {
	Status string `json:"status"`
}

func (d *UpdateStatusDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("status", d.Status).Required().OneOf(Statuses...)
	return v.Err()
}

type ListFilter struct {
	ProjectID  *int64
	Status     string
	AssigneeID *int64
	Priority   string
	// VisibleTo limits results to tasks assigned to or created by the user; zero means all.
	VisibleTo int64
	Page      pagination.Params
}
