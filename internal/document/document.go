package document

import (
	"time"

	"github.com/frahmantamala/projecthub/internal"
	documentDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/document"
	"gorm.io/datatypes"
)

// Documents share one table; the category separates general from HSE uploads.
const (
	CategoryGeneral = "general"
	CategoryHSE     = "hse"
)

type Document struct {
	ID         int64     `json:"id"`
	Category   string    `json:"category"`
	Name       string    `json:"name"`
	URLs       []string  `json:"urls"`
	UploadedBy int64     `json:"uploadedBy"`
	ReportID   *int64    `json:"reportId"`
	ProjectID  *int64    `json:"projectId"`
	MimeType   string    `json:"mimeType"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

var (
	ErrNotFound        = internal.NewNotFoundError("Document not found", internal.ErrCodeDocumentNotFound)
	ErrReportNotFound  = internal.NewNotFoundError("Report not found", internal.ErrCodeReportNotFound)
	ErrProjectNotFound = internal.NewNotFoundError("Project not found", internal.ErrCodeProjectNotFound)
	ErrProjectMismatch = internal.NewValidationError("Document and report belong to different projects", internal.ErrCodeProjectMismatch)
)

func ToDataModel(d *Document) *documentDatamodel.Document {
	return &documentDatamodel.Document{
		ID:         d.ID,
		Category:   d.Category,
		Name:       d.Name,
		URLs:       datatypes.JSONSlice[string](d.URLs),
		UploadedBy: d.UploadedBy,
		ReportID:   d.ReportID,
		ProjectID:  d.ProjectID,
		MimeType:   d.MimeType,
		Size:       d.Size,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func FromDataModel(d *documentDatamodel.Document) *Document {
	urls := []string(d.URLs)
	if urls == nil {
		urls = []string{}
	}
	return &Document{
		ID:         d.ID,
		Category:   d.Category,
		Name:       d.Name,
		URLs:       urls,
		UploadedBy: d.UploadedBy,
		ReportID:   d.ReportID,
		ProjectID:  d.ProjectID,
		MimeType:   d.MimeType,
		Size:       d.Size,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// sameProject reports whether a document project and a report project may be linked.
func sameProject(documentProject, reportProject *int64) bool {
	if documentProject == nil || reportProject == nil {
		return true
	}
	return *documentProject == *reportProject
}
