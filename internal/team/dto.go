package team

import (
	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
	"github.com/frahmantamala/projecthub/internal/core/common/validation"
)

type CreateTeamDTO struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	LeadID      *int64  `json:"leadId,omitempty"`
	ProjectID   *int64  `json:"projectId,omitempty"`
	MemberIDs   []int64 `json:"memberIds,omitempty"`
}

func (d *CreateTeamDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(200)
	return v.Err()
}

type UpdateTeamDTO struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	LeadID      *int64  `json:"leadId,omitempty"`
	ProjectID   *int64  `json:"projectId,omitempty"`
}

func (d *UpdateTeamDTO) Validate() error {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", *d.Name).Required().MaxLength(200)
	}
	return v.Err()
}

func (d UpdateTeamDTO) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if d.Name != nil {
		fields["name"] = *d.Name
	}
	if d.Description != nil {
		fields["description"] = *d.Description
	}
	if d.LeadID != nil {
		fields["lead_id"] = *d.LeadID
	}
	if d.ProjectID != nil {
		fields["project_id"] = *d.ProjectID
	}
	return fields
}

type AddMemberDTO struct {
	UserID int64 `json:"userId"`
}

func (d *AddMemberDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("userId", d.UserID).Required()
	return v.Err()
}

type ListFilter struct {
	ProjectID *int64
	Search    string
	Page      pagination.Params
}
