package worklog

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/auth"
	"github.com/frahmantamala/projecthub/internal/core/common/datetime"
	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
	"github.com/frahmantamala/projecthub/internal/core/common/validation"
)

type RepositoryAPI interface {
	Create(ctx context.Context, w *WorkLog) error
	GetByID(ctx context.Context, id int64) (*WorkLog, error)
	List(ctx context.Context, filter ListFilter) ([]*WorkLog, int64, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	HoursByProject(ctx context.Context, filter SummaryFilter) ([]ProjectHours, error)
	ProjectExists(ctx context.Context, id int64) (bool, error)
	// TaskProject returns the project of a task, or ErrTaskNotFound.
	TaskProject(ctx context.Context, taskID int64) (int64, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Create(ctx context.Context, dto CreateWorkLogDTO, requester *auth.User) (*WorkLog, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	userID := requester.ID
	if dto.UserID != nil && requester.IsAdmin() {
		userID = *dto.UserID
	}
	if err := s.checkReferences(ctx, dto.ProjectID, dto.TaskID); err != nil {
		return nil, err
	}

	w := &WorkLog{
		UserID:      userID,
		ProjectID:   dto.ProjectID,
		TaskID:      dto.TaskID,
		Date:        datetime.Truncate(dto.Date.Time),
		Hours:       dto.Hours,
		Description: dto.Description,
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, err
	}
	s.logger.Info("work logged", "work_log_id", w.ID, "user_id", userID, "project_id", w.ProjectID, "hours", w.Hours)
	return w, nil
}

func (s *Service) Get(ctx context.Context, id int64, requester *auth.User) (*WorkLog, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.UserID != requester.ID && !requester.HasPermission(auth.PermWorkLogReadAll) {
		return nil, ErrNotFound
	}
	return w, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter, requester *auth.User) (pagination.Page[*WorkLog], error) {
	if err := validateRange(filter.From, filter.To); err != nil {
		return pagination.Page[*WorkLog]{}, err
	}
	if !requester.HasPermission(auth.PermWorkLogReadAll) {
		filter.UserID = &requester.ID
	}
	filter.Page = filter.Page.Normalize()

	logs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return pagination.Page[*WorkLog]{}, err
	}
	return pagination.NewPage(logs, filter.Page, total), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateWorkLogDTO, requester *auth.User) (*WorkLog, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	current, err := s.owned(ctx, id, requester)
	if err != nil {
		return nil, err
	}

	projectID, taskID := current.ProjectID, current.TaskID
	if dto.ProjectID != nil {
		projectID = *dto.ProjectID
	}
	if dto.TaskID != nil {
		taskID = dto.TaskID
	}
	if dto.ProjectID != nil || dto.TaskID != nil {
		if err := s.checkReferences(ctx, projectID, taskID); err != nil {
			return nil, err
		}
	}

	if fields := dto.Fields(); len(fields) > 0 {
		if err := s.repo.Update(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64, requester *auth.User) error {
	if _, err := s.owned(ctx, id, requester); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("work log deleted", "work_log_id", id)
	return nil
}

// Summary totals hours per project over the range. Users without read-all see their own hours only.
func (s *Service) Summary(ctx context.Context, filter SummaryFilter, requester *auth.User) (*Summary, error) {
	if err := validateRange(filter.From, filter.To); err != nil {
		return nil, err
	}
	if !requester.HasPermission(auth.PermWorkLogReadAll) {
		filter.UserID = &requester.ID
	}
	rows, err := s.repo.HoursByProject(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &Summary{From: filter.From, To: filter.To, Projects: rows}
	if out.Projects == nil {
		out.Projects = []ProjectHours{}
	}
	for _, r := range rows {
		out.TotalHours += r.Hours
	}
	return out, nil
}

func (s *Service) owned(ctx context.Context, id int64, requester *auth.User) (*WorkLog, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.UserID != requester.ID && !requester.IsAdmin() {
		if requester.HasPermission(auth.PermWorkLogReadAll) {
			return nil, internal.ErrUnauthorizedAccess
		}
		return nil, ErrNotFound
	}
	return w, nil
}

func (s *Service) checkReferences(ctx context.Context, projectID int64, taskID *int64) error {
	ok, err := s.repo.ProjectExists(ctx, projectID)
	if err != nil {
		return internal.NewInternalError("failed to check project", err)
	}
	if !ok {
		return ErrProjectNotFound
	}
	if taskID == nil {
		return nil
	}
	taskProject, err := s.repo.TaskProject(ctx, *taskID)
	if err != nil {
		return err
	}
	if taskProject != projectID {
		return ErrTaskMismatch
	}
	return nil
}

func validateRange(from, to *time.Time) error {
	if to == nil {
		return nil
	}
	v := validation.NewValidator()
	v.Field("to", *to).NotBefore("from", from)
	return v.Err()
}
