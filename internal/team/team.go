package team

import (
	"time"

	"github.com/frahmantamala/projecthub/internal"
	teamDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/team"
	coreuser "github.com/frahmantamala/projecthub/internal/core/user"
)

type Team struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	LeadID      *int64              `json:"leadId"`
	ProjectID   *int64              `json:"projectId"`
	Members     []*coreuser.Summary `json:"members"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

var (
	ErrNotFound        = internal.NewNotFoundError("Team not found", internal.ErrCodeTeamNotFound)
	ErrUserNotFound    = internal.NewNotFoundError("User not found", internal.ErrCodeUserNotFound)
	ErrProjectNotFound = internal.NewNotFoundError("Project not found", internal.ErrCodeProjectNotFound)
	ErrAlreadyMember   = internal.NewConflictError("User is already a member of this team", internal.ErrCodeAlreadyMember)
	ErrNotMember       = internal.NewNotFoundError("User is not a member of this team", internal.ErrCodeNotMember)
)

func ToDataModel(t *Team) *teamDatamodel.Team {
	return &teamDatamodel.Team{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		LeadID:      t.LeadID,
		ProjectID:   t.ProjectID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func FromDataModel(t *teamDatamodel.Team) *Team {
	return &Team{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		LeadID:      t.LeadID,
		ProjectID:   t.ProjectID,
		Members:     []*coreuser.Summary{},
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
