package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/auth"
	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
	"github.com/frahmantamala/projecthub/internal/core/common/validation"
	coreuser "github.com/frahmantamala/projecthub/internal/core/user"
	"github.com/frahmantamala/projecthub/internal/notification"
)

type RepositoryAPI interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id int64) (*Task, error)
	List(ctx context.Context, filter ListFilter) ([]*Task, int64, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	ProjectName(ctx context.Context, projectID int64) (string, error)
}

type UserDirectory interface {
	Get(ctx context.Context, id int64) (*coreuser.Summary, error)
	Summaries(ctx context.Context, ids []int64) (map[int64]*coreuser.Summary, error)
}

type Service struct {
	repo     RepositoryAPI
	users    UserDirectory
	notifier notification.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo RepositoryAPI, users UserDirectory, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, users: users, notifier: notifier, logger: logger, now: time.Now}
}

func (s *Service) Create(ctx context.Context, dto CreateTaskDTO, requester *auth.User) (*Task, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	projectName, err := s.repo.ProjectName(ctx, dto.ProjectID)
	if err != nil {
		return nil, err
	}
	var assignee *coreuser.Summary
	if dto.AssigneeID != nil {
		if assignee, err = s.assignee(ctx, *dto.AssigneeID); err != nil {
			return nil, err
		}
	}

	t := &Task{
		ProjectID:   dto.ProjectID,
		Title:       dto.Title,
		Description: dto.Description,
		AssigneeID:  dto.AssigneeID,
		CreatedBy:   requester.ID,
		Status:      dto.Status,
		Priority:    dto.Priority,
		DueDate:     dto.DueDate.Ptr(),
	}
	if t.Status == StatusDone {
		now := s.now()
		t.CompletedAt = &now
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Info("task created", "task_id", t.ID, "project_id", t.ProjectID)

	if assignee != nil {
		s.notifier.Notify(ctx, notification.TaskAssigned(recipient(assignee), t.Title, projectName))
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, id int64, requester *auth.User) (*Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.HasPermission(auth.PermTaskReadAll) && !t.VisibleTo(requester.ID) {
		return nil, ErrNotFound
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter, requester *auth.User) (pagination.Page[*Task], error) {
	v := validation.NewValidator()
	v.Field("status", filter.Status).OneOf(Statuses...)
	v.Field("priority", filter.Priority).OneOf(Priorities...)
	if err := v.Err(); err != nil {
		return pagination.Page[*Task]{}, err
	}
	if !requester.HasPermission(auth.PermTaskReadAll) {
		filter.VisibleTo = requester.ID
	}
	filter.Page = filter.Page.Normalize()

	tasks, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return pagination.Page[*Task]{}, err
	}
	return pagination.NewPage(tasks, filter.Page, total), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateTaskDTO, requester *auth.User) (*Task, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, id, requester)
	if err != nil {
		return nil, err
	}
	if !requester.HasPermission(auth.PermTaskReadAll) && current.CreatedBy != requester.ID {
		return nil, internal.ErrUnauthorizedAccess
	}

	var newAssignee *coreuser.Summary
	if dto.AssigneeID != nil && (current.AssigneeID == nil || *current.AssigneeID != *dto.AssigneeID) {
		if newAssignee, err = s.assignee(ctx, *dto.AssigneeID); err != nil {
			return nil, err
		}
	}

	fields := dto.Fields()
	if dto.Status != nil {
		s.applyCompletion(fields, current.Status, *dto.Status)
	}
	if len(fields) > 0 {
		if err := s.repo.Update(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if newAssignee != nil {
		projectName, err := s.repo.ProjectName(ctx, updated.ProjectID)
		if err != nil {
			s.logger.Warn("task assigned but project lookup failed", "task_id", id, "error", err)
		}
		s.notifier.Notify(ctx, notification.TaskAssigned(recipient(newAssignee), updated.Title, projectName))
	}
	if dto.Status != nil && *dto.Status != current.Status {
		s.notifyStatus(ctx, updated, current.Status)
	}
	return updated, nil
}

// UpdateStatus sets any status from any other and mails the assignee and the creator.
func (s *Service) UpdateStatus(ctx context.Context, id int64, dto UpdateStatusDTO, requester *auth.User) (*Task, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, id, requester)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{"status": dto.Status}
	s.applyCompletion(fields, current.Status, dto.Status)
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("task status changed", "task_id", id, "from", current.Status, "to", dto.Status)
	s.notifyStatus(ctx, updated, current.Status)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64, requester *auth.User) error {
	t, err := s.Get(ctx, id, requester)
	if err != nil {
		return err
	}
	if !requester.HasPermission(auth.PermTaskReadAll) && t.CreatedBy != requester.ID {
		return internal.ErrUnauthorizedAccess
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("task deleted", "task_id", id)
	return nil
}

// applyCompletion keeps the original completed_at when a done task is set to done again.
func (s *Service) applyCompletion(fields map[string]interface{}, from, to string) {
	switch {
	case to != StatusDone:
		fields["completed_at"] = nil
	case from != StatusDone:
		fields["completed_at"] = s.now()
	}
}

func (s *Service) assignee(ctx context.Context, id int64) (*coreuser.Summary, error) {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrAssigneeNotFound
	}
	return u, nil
}

func (s *Service) notifyStatus(ctx context.Context, t *Task, from string) {
	ids := []int64{t.CreatedBy}
	if t.AssigneeID != nil && *t.AssigneeID != t.CreatedBy {
		ids = append(ids, *t.AssigneeID)
	}
	users, err := s.users.Summaries(ctx, ids)
	if err != nil {
		s.logger.Warn("status mail skipped", "task_id", t.ID, "error", err)
		return
	}
	to := make([]notification.Recipient, 0, len(users))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			to = append(to, recipient(u))
		}
	}
	if len(to) == 0 {
		return
	}
	s.notifier.Notify(ctx, notification.TaskStatusChanged(to, t.Title, from, t.Status))
}

func recipient(u *coreuser.Summary) notification.Recipient {
	return notification.Recipient{Name: u.FullName, Email: u.Email}
}
