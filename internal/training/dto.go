package training

import (
	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/core/common/datetime"
	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
	"github.com/frahmantamala/projecthub/internal/core/common/validation"
)

type CreateTrainingDTO struct {
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	TrainerID      *int64         `json:"trainerId,omitempty"`
	Location       string         `json:"location"`
	StartDate      datetime.Date  `json:"startDate"`
	EndDate        *datetime.Date `json:"endDate,omitempty"`
	Status         string         `json:"status"`
	ParticipantIDs []int64        `json:"participantIds,omitempty"`
}

func (d *CreateTrainingDTO) Validate() error {
	if d.Status == "" {
		d.Status = StatusScheduled
	}
	v := validation.NewValidator()
	v.Field("title", d.Title).Required().MaxLength(200)
	v.Field("startDate", d.StartDate.Time).Required()
	v.Field("status", d.Status).OneOf(Statuses...)
	if d.EndDate != nil {
		v.Field("endDate", d.EndDate.Time).NotBefore("startDate", d.StartDate.Ptr())
	}
	return v.Err()
}

type UpdateTrainingDTO struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	TrainerID   *int64         `json:"trainerId,omitempty"`
	Location    *string        `json:"location,omitempty"`
	StartDate   *datetime.Date `json:"startDate,omitempty"`
	EndDate     *datetime.Date `json:"endDate,omitempty"`
	Status      *string        `json:"status,omitempty"`
}

func (d *UpdateTrainingDTO) Validate() error {
	v := validation.NewValidator()
	if d.Title != nil {
		v.Field("title", *d.Title).Required().MaxLength(200)
	}
	if d.Status != nil {
		v.Field("status", *d.Status).Required().OneOf(Statuses...)
	}
	return v.Err()
}

func (d UpdateTrainingDTO) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if d.Title != nil {
		fields["title"] = *d.Title
	}
	if d.Description != nil {
		fields["description"] = *d.Description
	}
	if d.TrainerID != nil {
		fields["trainer_id"] = *d.TrainerID
	}
	if d.Location != nil {
		fields["location"] = *d.Location
	}
	if d.StartDate != nil {
		fields["start_date"] = d.StartDate.Time
	}
	if d.EndDate != nil {
		fields["end_date"] = d.EndDate.Time
	}
	if d.Status != nil {
		fields["status"] = *d.Status
	}
	return fields
}

type ProgressDTO struct {
	Progress *int `json:"progress"`
}

func (d *ProgressDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("progress", d.Progress).
		Custom(func(value interface{}) *internal.AppError {
			if d.Progress == nil {
				return internal.NewValidationFieldError("progress", "progress is required", internal.ErrCodeValidationFailed)
			}
			return nil
		}).
		MinInt(0, internal.ErrCodeValidationFailed).
		MaxInt(ProgressComplete, internal.ErrCodeValidationFailed)
	return v.Err()
}

type ParticipantDTO struct {
	UserID int64 `json:"userId"`
}

func (d *ParticipantDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("userId", d.UserID).Required()
	return v.Err()
}

type ListFilter struct {
	Status string
	Search string
	Page   pagination.Params
}
