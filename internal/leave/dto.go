package leave

import (
	"github.com/frahmantamala/projecthub/internal/core/common/datetime"
	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
	"github.com/frahmantamala/projecthub/internal/core/common/validation"
)

type CreateLeaveDTO struct {
	Type      string        `json:"type"`
	StartDate datetime.Date `json:"startDate"`
	EndDate   datetime.Date `json:"endDate"`
	Reason    string        `json:"reason"`
}

func (d *CreateLeaveDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("type", d.Type).Required().OneOf(Types...)
	v.Field("startDate", d.StartDate.Time).Required()
	v.Field("endDate", d.EndDate.Time).Required().NotBefore("startDate", d.StartDate.Ptr())
	v.Field("reason", d.Reason).MaxLength(1000)
	return v.Err()
}

type UpdateLeaveDTO struct {
	Type      *string        `json:"type,omitempty"`
	StartDate *datetime.Date `json:"startDate,omitempty"`
	EndDate   *datetime.Date `json:"endDate,omitempty"`
	Reason    *string        `json:"reason,omitempty"`
}

func (d *UpdateLeaveDTO) Validate() error {
	v := validation.NewValidator()
	if d.Type != nil {
		v.Field("type", *d.Type).Required().OneOf(Types...)
	}
	if d.Reason != nil {
		v.Field("reason", *d.Reason).MaxLength(1000)
	}
	return v.Err()
}

func (d UpdateLeaveDTO) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if d.Type != nil {
		fields["type"] = *d.Type
	}
	if d.StartDate != nil {
		fields["start_date"] = d.StartDate.Time
	}
	if d.EndDate != nil {
		fields["end_date"] = d.EndDate.Time
	}
	if d.Reason != nil {
		fields["reason"] = *d.Reason
	}
	return fields
}

type ReviewDTO struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

func (d *ReviewDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("status", d.Status).Required().OneOf(StatusApproved, StatusRejected)
	v.Field("note", d.Note).MaxLength(1000)
	return v.Err()
}

type ListFilter struct {
	UserID *int64
	Status string
	Type   string
	Page   pagination.Params
}
