package client

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
)

type RepositoryAPI interface {
	Create(ctx context.Context, c *Client) error
	GetByID(ctx context.Context, id int64) (*Client, error)
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	List(ctx context.Context, filter ListFilter) ([]*Client, int64, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	ListProjects(ctx context.Context, clientID int64) ([]ProjectRef, error)
	ProjectClientID(ctx context.Context, projectID int64) (clientID *int64, err error)
	SetProjectClient(ctx context.Context, projectID, clientID int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Create(ctx context.Context, dto CreateClientDTO) (*Client, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, dto.Email, 0); err != nil {
		return nil, err
	}

	c := &Client{
		Name:    dto.Name,
		Email:   dto.Email,
		Phone:   dto.Phone,
		Company: dto.Company,
		Address: dto.Address,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("client created", "client_id", c.ID)
	return c, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Client, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	projects, err := s.repo.ListProjects(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Projects = projects
	return c, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) (pagination.Page[*Client], error) {
	filter.Page = filter.Page.Normalize()
	clients, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return pagination.Page[*Client]{}, err
	}
	return pagination.NewPage(clients, filter.Page, total), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateClientDTO) (*Client, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if dto.Email != nil {
		if err := s.ensureEmailFree(ctx, *dto.Email, id); err != nil {
			return nil, err
		}
	}
	if fields := dto.Fields(); len(fields) > 0 {
		if err := s.repo.Update(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

// Delete removes the client; its projects stay and lose the association.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("client deleted", "client_id", id)
	return nil
}

func (s *Service) AssociateProject(ctx context.Context, clientID, projectID int64) (*Client, error) {
	if _, err := s.repo.GetByID(ctx, clientID); err != nil {
		return nil, err
	}

	current, err := s.repo.ProjectClientID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if current != nil && *current == clientID {
		return nil, ErrAlreadyAssociated
	}

	if err := s.repo.SetProjectClient(ctx, projectID, clientID); err != nil {
		return nil, err
	}
	s.logger.Info("project associated with client", "client_id", clientID, "project_id", projectID, "previous_client_id", current)
	return s.Get(ctx, clientID)
}

func (s *Service) ensureEmailFree(ctx context.Context, email string, excludeID int64) error {
	taken, err := s.repo.EmailExists(ctx, email, excludeID)
	if err != nil {
		return internal.NewInternalError("failed to check client email", err)
	}
	if taken {
		return ErrEmailTaken
	}
	return nil
}
