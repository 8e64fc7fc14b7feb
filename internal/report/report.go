package report

import (
	"time"

	"github.com/frahmantamala/projecthub/internal"
	documentDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/document"
	reportDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/report"
)

const (
	CategoryGeneral = "general"
	CategoryHSE     = "hse"

	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"

	StatusOpen          = "open"
	StatusInvestigating = "investigating"
	StatusClosed        = "closed"
)

var (
	Categories = []string{CategoryGeneral, CategoryHSE}
	Severities = []string{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
	Statuses   = []string{StatusOpen, StatusInvestigating, StatusClosed}
)

type Report struct {
	ID          int64         `json:"id"`
	Category    string        `json:"category"`
	ProjectID   *int64        `json:"projectId"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Location    string        `json:"location"`
	Severity    string        `json:"severity"`
	Status      string        `json:"status"`
	ReportedBy  int64         `json:"reportedBy"`
	ClosedBy    *int64        `json:"closedBy"`
	ClosedAt    *time.Time    `json:"closedAt"`
	Documents   []DocumentRef `json:"documents,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// DocumentRef is a document as embedded in its report.
type DocumentRef struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	URLs      []string  `json:"urls"`
	MimeType  string    `json:"mimeType"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

var (
	ErrNotFound        = internal.NewNotFoundError("Report not found", internal.ErrCodeReportNotFound)
	ErrProjectNotFound = internal.NewNotFoundError("Project not found", internal.ErrCodeProjectNotFound)
)

func ToDataModel(r *Report) *reportDatamodel.Report {
	return &reportDatamodel.Report{
		ID:          r.ID,
		Category:    r.Category,
		ProjectID:   r.ProjectID,
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		Severity:    r.Severity,
		Status:      r.Status,
		ReportedBy:  r.ReportedBy,
		ClosedBy:    r.ClosedBy,
		ClosedAt:    r.ClosedAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func FromDataModel(r *reportDatamodel.Report) *Report {
	out := &Report{
		ID:          r.ID,
		Category:    r.Category,
		ProjectID:   r.ProjectID,
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		Severity:    r.Severity,
		Status:      r.Status,
		ReportedBy:  r.ReportedBy,
		ClosedBy:    r.ClosedBy,
		ClosedAt:    r.ClosedAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if len(r.Documents) > 0 {
		out.Documents = make([]DocumentRef, len(r.Documents))
		for i := range r.Documents {
			out.Documents[i] = documentRef(&r.Documents[i])
		}
	}
	return out
}

func documentRef(d *documentDatamodel.Document) DocumentRef {
	return DocumentRef{
		ID:        d.ID,
		Name:      d.Name,
		URLs:      []string(d.URLs),
		MimeType:  d.MimeType,
		Size:      d.Size,
		CreatedAt: d.CreatedAt,
	}
}
