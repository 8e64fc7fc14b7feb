package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/auth"
	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
	"github.com/frahmantamala/projecthub/internal/core/common/validation"
	"github.com/frahmantamala/projecthub/internal/core/events"
)

type RepositoryAPI interface {
	Create(ctx context.Context, r *Report) error
	GetByID(ctx context.Context, category string, id int64, withDocuments bool) (*Report, error)
	List(ctx context.Context, filter ListFilter) ([]*Report, int64, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) error
	// Delete removes the report and detaches its documents.
	Delete(ctx context.Context, category string, id int64) error
	ProjectExists(ctx context.Context, id int64) (bool, error)
}

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service serves one report category; general and HSE reports share the table.
type Service struct {
	category  string
	repo      RepositoryAPI
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(category string, repo RepositoryAPI, publisher Publisher, logger *slog.Logger) *Service {
	return &Service{
		category:  category,
		repo:      repo,
		publisher: publisher,
		logger:    logger.With("report_category", category),
		now:       time.Now,
	}
}

func (s *Service) Category() string {
	return s.category
}

func (s *Service) Create(ctx context.Context, dto CreateReportDTO, requester *auth.User) (*Report, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkProject(ctx, dto.ProjectID); err != nil {
		return nil, err
	}

	r := &Report{
		Category:    s.category,
		ProjectID:   dto.ProjectID,
		Title:       dto.Title,
		Description: dto.Description,
		Location:    dto.Location,
		Severity:    dto.Severity,
		Status:      StatusOpen,
		ReportedBy:  requester.ID,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	s.logger.Info("report filed", "report_id", r.ID, "severity", r.Severity)

	if err := s.publisher.Publish(ctx, events.NewReportFiledEvent(r.ID, r.Category, r.Title, r.Severity, r.ReportedBy)); err != nil {
		s.logger.Warn("report.filed publish failed", "report_id", r.ID, "error", err)
	}
	return r, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Report, error) {
	return s.repo.GetByID(ctx, s.category, id, true)
}

func (s *Service) List(ctx context.Context, filter ListFilter) (pagination.Page[*Report], error) {
	v := validation.NewValidator()
	v.Field("status", filter.Status).OneOf(Statuses...)
	v.Field("severity", filter.Severity).OneOf(Severities...)
	if err := v.Err(); err != nil {
		return pagination.Page[*Report]{}, err
	}
	filter.Category = s.category
	filter.Page = filter.Page.Normalize()

	reports, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return pagination.Page[*Report]{}, err
	}
	return pagination.NewPage(reports, filter.Page, total), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateReportDTO) (*Report, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, s.category, id, false); err != nil {
		return nil, err
	}
	if err := s.checkProject(ctx, dto.ProjectID); err != nil {
		return nil, err
	}
	if fields := dto.Fields(); len(fields) > 0 {
		if err := s.repo.Update(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

// Close marks the report closed by the requester. Closing a closed report refreshes closer and time.
func (s *Service) Close(ctx context.Context, id int64, requester *auth.User) (*Report, error) {
	if _, err := s.repo.GetByID(ctx, s.category, id, false); err != nil {
		return nil, err
	}
	err := s.repo.Update(ctx, id, map[string]interface{}{
		"status":    StatusClosed,
		"closed_by": requester.ID,
		"closed_at": s.now(),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("report closed", "report_id", id, "closed_by", requester.ID)
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, s.category, id); err != nil {
		return err
	}
	s.logger.Info("report deleted", "report_id", id)
	return nil
}

func (s *Service) checkProject(ctx context.Context, projectID *int64) error {
	if projectID == nil {
		return nil
	}
	ok, err := s.repo.ProjectExists(ctx, *projectID)
	if err != nil {
		return internal.NewInternalError("failed to check project", err)
	}
	if !ok {
		return ErrProjectNotFound
	}
	return nil
}
