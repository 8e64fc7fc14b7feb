package leave

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/auth"
	"github.com/frahmantamala/projecthub/internal/core/common/datetime"
	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
	"github.com/frahmantamala/projecthub/internal/core/common/validation"
	coreuser "github.com/frahmantamala/projecthub/internal/core/user"
	"github.com/frahmantamala/projecthub/internal/notification"
)

type RepositoryAPI interface {
	Create(ctx context.Context, l *Leave) error
	GetByID(ctx context.Context, id int64) (*Leave, error)
	List(ctx context.Context, filter ListFilter) ([]*Leave, int64, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
}

type UserDirectory interface {
	Get(ctx context.Context, id int64) (*coreuser.Summary, error)
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

func (s *Service) Create(ctx context.Context, dto CreateLeaveDTO, requester *auth.User) (*Leave, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	l := &Leave{
		UserID:    requester.ID,
		Type:      dto.Type,
		StartDate: datetime.Truncate(dto.StartDate.Time),
		EndDate:   datetime.Truncate(dto.EndDate.Time),
		Reason:    dto.Reason,
		Status:    StatusPending,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	s.logger.Info("leave requested", "leave_id", l.ID, "user_id", l.UserID, "days", l.Days)
	return l, nil
}

func (s *Service) Get(ctx context.Context, id int64, requester *auth.User) (*Leave, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.UserID != requester.ID && !requester.HasPermission(auth.PermLeaveApprove) {
		return nil, ErrNotFound
	}
	return l, nil
}

// List shows the requester's own leaves unless they may approve, in which case the userId filter applies.
func (s *Service) List(ctx context.Context, filter ListFilter, requester *auth.User) (pagination.Page[*Leave], error) {
	v := validation.NewValidator()
	v.Field("status", filter.Status).OneOf(Statuses...)
	v.Field("type", filter.Type).OneOf(Types...)
	if err := v.Err(); err != nil {
		return pagination.Page[*Leave]{}, err
	}
	if !requester.HasPermission(auth.PermLeaveApprove) {
		filter.UserID = &requester.ID
	}
	filter.Page = filter.Page.Normalize()

	leaves, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return pagination.Page[*Leave]{}, err
	}
	return pagination.NewPage(leaves, filter.Page, total), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateLeaveDTO, requester *auth.User) (*Leave, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	current, err := s.owned(ctx, id, requester)
	if err != nil {
		return nil, err
	}

	start, end := current.StartDate, current.EndDate
	if dto.StartDate != nil {
		start = datetime.Truncate(dto.StartDate.Time)
		dto.StartDate.Time = start
	}
	if dto.EndDate != nil {
		end = datetime.Truncate(dto.EndDate.Time)
		dto.EndDate.Time = end
	}
	v := validation.NewValidator()
	v.Field("endDate", end).NotBefore("startDate", &start)
	if err := v.Err(); err != nil {
		return nil, err
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
	s.logger.Info("leave deleted", "leave_id", id)
	return nil
}

// Review approves or rejects a request and mails the requester. A decided request may be reviewed again.
func (s *Service) Review(ctx context.Context, id int64, dto ReviewDTO, reviewer *auth.User) (*Leave, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	err := s.repo.Update(ctx, id, map[string]interface{}{
		"status":      dto.Status,
		"review_note": dto.Note,
		"reviewed_by": reviewer.ID,
		"reviewed_at": s.now(),
	})
	if err != nil {
		return nil, err
	}
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("leave reviewed", "leave_id", id, "status", l.Status, "reviewer_id", reviewer.ID)

	requester, err := s.users.Get(ctx, l.UserID)
	switch {
	case err != nil:
		s.logger.Warn("leave review mail skipped", "leave_id", id, "error", err)
	case requester != nil:
		s.notifier.Notify(ctx, notification.LeaveReviewed(
			notification.Recipient{Name: requester.FullName, Email: requester.Email},
			l.Status, l.ReviewNote,
			l.StartDate.Format(datetime.DateLayout), l.EndDate.Format(datetime.DateLayout),
		))
	}
	return l, nil
}

// owned returns the leave when the requester filed it (admins pass) and it is still pending.
func (s *Service) owned(ctx context.Context, id int64, requester *auth.User) (*Leave, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.UserID != requester.ID && !requester.IsAdmin() {
		if requester.HasPermission(auth.PermLeaveApprove) {
			return nil, internal.ErrUnauthorizedAccess
		}
		return nil, ErrNotFound
	}
	if l.Status != StatusPending {
		return nil, ErrNotPending
	}
	return l, nil
}
