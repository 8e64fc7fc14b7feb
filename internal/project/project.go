package project

import (
	"time"

	"github.com/frahmantamala/projecthub/internal"
	projectDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/project"
)

const (
	StatusPlanned   = "planned"
	StatusActive    = "active"
	StatusOnHold    = "on_hold"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var Statuses = []string{StatusPlanned, StatusActive, StatusOnHold, StatusCompleted, StatusCancelled}

type Project struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ClientID    *int64     `json:"clientId"`
	ManagerID   int64      `json:"managerId"`
	Status      string     `json:"status"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Budget      float64    `json:"budget"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

var (
	ErrNotFound        = internal.NewNotFoundError("Project not found", internal.ErrCodeProjectNotFound)
	ErrClientNotFound  = internal.NewNotFoundError("Client not found", internal.ErrCodeClientNotFound)
	ErrManagerNotFound = internal.NewNotFoundError("Manager not found", internal.ErrCodeUserNotFound)
	ErrInUse           = internal.NewConflictError("Project has logged work and cannot be deleted", internal.ErrCodeProjectInUse)
)

func ToDataModel(p *Project) *projectDatamodel.Project {
	return &projectDatamodel.Project{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		ClientID:    p.ClientID,
		ManagerID:   p.ManagerID,
		Status:      p.Status,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Budget:      p.Budget,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func FromDataModel(p *projectDatamodel.Project) *Project {
	return &Project{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		ClientID:    p.ClientID,
		ManagerID:   p.ManagerID,
		Status:      p.Status,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Budget:      p.Budget,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
