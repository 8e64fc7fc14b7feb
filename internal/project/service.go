package project

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/auth"
	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
	"github.com/frahmantamala/projecthub/internal/core/common/validation"
)

type RepositoryAPI interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id int64) (*Project, error)
	List(ctx context.Context, filter ListFilter) ([]*Project, int64, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	ClientExists(ctx context.Context, id int64) (bool, error)
	IsVisibleTo(ctx context.Context, projectID, userID int64) (bool, error)
	CountWorkLogs(ctx context.Context, projectID int64) (int64, error)
}

type UserDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo   RepositoryAPI
	users  UserDirectory
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, users UserDirectory, logger *slog.Logger) *Service {
	return &Service{repo: repo, users: users, logger: logger}
}

func (s *Service) Create(ctx context.Context, dto CreateProjectDTO, requester *auth.User) (*Project, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	managerID := requester.ID
	if dto.ManagerID != nil {
		managerID = *dto.ManagerID
	}
	if err := s.checkReferences(ctx, dto.ClientID, &managerID); err != nil {
		return nil, err
	}

	p := &Project{
		Name:        dto.Name,
		Description: dto.Description,
		ClientID:    dto.ClientID,
		ManagerID:   managerID,
		Status:      dto.Status,
		StartDate:   dto.StartDate.Ptr(),
		EndDate:     dto.EndDate.Ptr(),
		Budget:      dto.Budget,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("project created", "project_id", p.ID, "manager_id", managerID)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id int64, requester *auth.User) (*Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if requester.HasPermission(auth.PermProjectReadAll) || p.ManagerID == requester.ID {
		return p, nil
	}
	visible, err := s.repo.IsVisibleTo(ctx, id, requester.ID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter, requester *auth.User) (pagination.Page[*Project], error) {
	if filter.Status != "" {
		v := validation.NewValidator()
		v.Field("status", filter.Status).OneOf(Statuses...)
		if err := v.Err(); err != nil {
			return pagination.Page[*Project]{}, err
		}
	}
	if !requester.HasPermission(auth.PermProjectReadAll) {
		filter.VisibleTo = requester.ID
	}
	filter.Page = filter.Page.Normalize()

	projects, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return pagination.Page[*Project]{}, err
	}
	return pagination.NewPage(projects, filter.Page, total), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateProjectDTO) (*Project, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	start, end := current.StartDate, current.EndDate
	if dto.StartDate != nil {
		start = dto.StartDate.Ptr()
	}
	if dto.EndDate != nil {
		end = dto.EndDate.Ptr()
	}
	if end != nil {
		v := validation.NewValidator()
		v.Field("endDate", *end).NotBefore("startDate", start)
		if err := v.Err(); err != nil {
			return nil, err
		}
	}

	if err := s.checkReferences(ctx, dto.ClientID, dto.ManagerID); err != nil {
		return nil, err
	}
	if fields := dto.Fields(); len(fields) > 0 {
		if err := s.repo.Update(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.repo.GetByID(ctx, id)
}

// Delete refuses projects with logged work. Otherwise tasks go with the project and teams,
// reports and documents keep their rows without the project reference.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	logs, err := s.repo.CountWorkLogs(ctx, id)
	if err != nil {
		return err
	}
	if logs > 0 {
		return ErrInUse
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("project deleted", "project_id", id)
	return nil
}

func (s *Service) checkReferences(ctx context.Context, clientID, managerID *int64) error {
	if clientID != nil {
		ok, err := s.repo.ClientExists(ctx, *clientID)
		if err != nil {
			return internal.NewInternalError("failed to check client", err)
		}
		if !ok {
			return ErrClientNotFound
		}
	}
	if managerID != nil {
		ok, err := s.users.Exists(ctx, *managerID)
		if err != nil {
			return internal.NewInternalError("failed to check manager", err)
		}
		if !ok {
			return ErrManagerNotFound
		}
	}
	return nil
}
