package project

import (
	"github.com/frahmantamala/projecthub/internal/core/common/datetime"
	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
	"github.com/frahmantamala/projecthub/internal/core/common/validation"
)

type CreateProjectDTO struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	ClientID    *int64         `json:"clientId,omitempty"`
	ManagerID   *int64         `json:"managerId,omitempty"`
	Status      string         `json:"status"`
	StartDate   *datetime.Date `json:"startDate,omitempty"`
	EndDate     *datetime.Date `json:"endDate,omitempty"`
	Budget      float64        `json:"budget"`
}

func (d *CreateProjectDTO) Validate() error {
	if d.Status == "" {
		d.Status = StatusPlanned
	}
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(200)
	v.Field("status", d.Status).OneOf(Statuses...)
	v.Field("budget", d.Budget).NonNegative()
	if d.EndDate != nil {
		v.Field("endDate", d.EndDate.Time).NotBefore("startDate", d.StartDate.Ptr())
	}
	return v.Err()
}

type UpdateProjectDTO struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	ClientID    *int64         `json:"clientId,omitempty"`
	ManagerID   *int64         `json:"managerId,omitempty"`
	Status      *string        `json:"status,omitempty"`
	StartDate   *datetime.Date `json:"startDate,omitempty"`
	EndDate     *datetime.Date `json:"endDate,omitempty"`
	Budget      *float64       `json:"budget,omitempty"`
}

func (d *UpdateProjectDTO) Validate() error {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", *d.Name).Required().MaxLength(200)
	}
	if d.Status != nil {
		v.Field("status", *d.Status).Required().OneOf(Statuses...)
	}
	if d.Budget != nil {
		v.Field("budget", *d.Budget).NonNegative()
	}
	return v.Err()
}

// Fields returns the column updates for the provided values only.
func (d UpdateProjectDTO) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if d.Name != nil {
		fields["name"] = *d.Name
	}
	if d.Description != nil {
		fields["description"] = *d.Description
	}
	if d.ClientID != nil {
		fields["client_id"] = *d.ClientID
	}
	if d.ManagerID != nil {
		fields["manager_id"] = *d.ManagerID
	}
	if d.Status != nil {
		fields["status"] = *d.Status
	}
	if d.StartDate != nil {
		fields["start_date"] = d.StartDate.Time
	}
	if d.EndDate != nil {
		fields["end_date"] = d.EndDate.Time
	}
	if d.Budget != nil {
		fields["budget"] = *d.Budget
	}
	return fields
}

type ListFilter struct {
	Status   string
	ClientID *int64
	Search   string
	// VisibleTo restricts results to projects the user manages or has tasks in; zero means no restriction.
	VisibleTo int64
	Page      pagination.Params
}
