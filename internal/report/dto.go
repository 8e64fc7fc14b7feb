package report

import (
	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
	"github.com/frahmantamala/projecthub/internal/core/common/validation"
)

type CreateReportDTO struct {
	ProjectID   *int64 `json:"projectId,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Severity    string `json:"severity"`
}

func (d *CreateReportDTO) Validate() error {
	if d.Severity == "" {
		d.Severity = SeverityLow
	}
	v := validation.NewValidator()
	v.Field("title", d.Title).Required().MaxLength(200)
	v.Field("severity", d.Severity).OneOf(Severities...)
	v.Field("location", d.Location).MaxLength(255)
	return v.Err()
}

type UpdateReportDTO struct {
	ProjectID   *int64  `json:"projectId,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	Severity    *string `json:"severity,omitempty"`
	Status      *string `json:"status,omitempty"`
}

func (d *UpdateReportDTO) Validate() error {
	v := validation.NewValidator()
	if d.Title != nil {
		v.Field("title", *d.Title).Required().MaxLength(200)
	}
	if d.Severity != nil {
		v.Field("severity", *d.Severity).Required().OneOf(Severities...)
	}
	if d.Status != nil {
		// closing goes through Close so the closer is recorded
		v.Field("status", *d.Status).Required().OneOf(StatusOpen, StatusInvestigating)
	}
	if d.Location != nil {
		v.Field("location", *d.Location).MaxLength(255)
	}
	return v.Err()
}

func (d UpdateReportDTO) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if d.ProjectID != nil {
		fields["project_id"] = *d.ProjectID
	}
	if d.Title != nil {
		fields["title"] = *d.Title
	}
	if d.Description != nil {
		fields["description"] = *d.Description
	}
	if d.Location != nil {
		fields["location"] = *d.Location
	}
	if d.Severity != nil {
		fields["severity"] = *d.Severity
	}
	if d.Status != nil {
		fields["status"] = *d.Status
		fields["closed_by"] = nil
		fields["closed_at"] = nil
	}
	return fields
}

type ListFilter struct {
	Category  string
	Status    string
	Severity  string
	ProjectID *int64
	Page      pagination.Params
}
