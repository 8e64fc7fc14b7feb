package document

import (
	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
	"github.com/frahmantamala/projecthub/internal/core/common/validation"
	"github.com/frahmantamala/projecthub/internal/storage"
	"gorm.io/datatypes"
)

// UploadDTO carries the files already stored by the upload middleware plus the form fields.
type UploadDTO struct {
	Name      string
	ReportID  *int64
	ProjectID *int64
	Files     []storage.UploadedFile
}

func (d UploadDTO) Validate() error {
	if len(d.Files) == 0 {
		return storage.ErrFileRequired
	}
	v := validation.NewValidator()
	v.Field("name", d.Name).MaxLength(255)
	return v.Err()
}

type AttachDTO struct {
	ReportID int64 `json:"reportId"`
}

func (d AttachDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("reportId", d.ReportID).MinInt(1, internal.ErrCodeInvalidID)
	return v.Err()
}

type UpdateDocumentDTO struct {
	Name      *string `json:"name,omitempty"`
	ReportID  *int64  `json:"reportId,omitempty"`
	ProjectID *int64  `json:"projectId,omitempty"`
	// File replaces the stored object when set.
	File *storage.UploadedFile `json:"-"`
}

func (d UpdateDocumentDTO) Validate() error {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", *d.Name).Required().MaxLength(255)
	}
	return v.Err()
}

func (d UpdateDocumentDTO) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if d.Name != nil {
		fields["name"] = *d.Name
	}
	if d.ReportID != nil {
		fields["report_id"] = *d.ReportID
	}
	if d.ProjectID != nil {
		fields["project_id"] = *d.ProjectID
	}
	if d.File != nil {
		fields["urls"] = datatypes.JSONSlice[string]{d.File.URL}
		fields["mime_type"] = d.File.MimeType
		fields["size"] = d.File.Size
	}
	return fields
}

type ListFilter struct {
	Category  string
	ReportID  *int64
	ProjectID *int64
	Search    string
	Page      pagination.Params
}
