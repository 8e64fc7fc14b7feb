package worklog

import (
	"time"

	"github.com/frahmantamala/projecthub/internal/core/common/datetime"
	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
	"github.com/frahmantamala/projecthub/internal/core/common/validation"
)

type CreateWorkLogDTO struct {
	// UserID is honoured for admins only.
	UserID      *int64        `json:"userId,omitempty"`
	ProjectID   int64         `json:"projectId"`
	TaskID      *int64        `json:"taskId,omitempty"`
	Date        datetime.Date `json:"date"`
	Hours       float64       `json:"hours"`
	Description string        `json:"description"`
}

func (d *CreateWorkLogDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("projectId", d.ProjectID).Required()
	v.Field("date", d.Date.Time).Required().NotFuture()
	v.Field("hours", d.Hours).RangeFloat(0, MaxHoursPerEntry)
	v.Field("description", d.Description).MaxLength(2000)
	return v.Err()
}

type UpdateWorkLogDTO struct {
	ProjectID   *int64         `json:"projectId,omitempty"`
	TaskID      *int64         `json:"taskId,omitempty"`
	Date        *datetime.Date `json:"date,omitempty"`
	Hours       *float64       `json:"hours,omitempty"`
	Description *string        `json:"description,omitempty"`
}

func (d *UpdateWorkLogDTO) Validate() error {
	v := validation.NewValidator()
	if d.Date != nil {
		v.Field("date", d.Date.Time).Required().NotFuture()
	}
	if d.Hours != nil {
		v.Field("hours", *d.Hours).RangeFloat(0, MaxHoursPerEntry)
	}
	if d.Description != nil {
		v.Field("description", *d.Description).MaxLength(2000)
	}
	return v.Err()
}

func (d UpdateWorkLogDTO) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if d.ProjectID != nil {
		fields["project_id"] = *d.ProjectID
	}
	if d.TaskID != nil {
		fields["task_id"] = *d.TaskID
	}
	if d.Date != nil {
		fields["date"] = datetime.Truncate(d.Date.Time)
	}
	if d.Hours != nil {
		fields["hours"] = *d.Hours
	}
	if d.Description != nil {
		fields["description"] = *d.Description
	}
	return fields
}

type ListFilter struct {
	ProjectID *int64
	TaskID    *int64
	UserID    *int64
	From      *time.Time
	To        *time.Time
	Page      pagination.Params
}

type SummaryFilter struct {
	UserID *int64
	From   *time.Time
	To     *time.Time
}
