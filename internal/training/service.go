package training

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
	"github.com/frahmantamala/projecthub/internal/core/common/validation"
	coreuser "github.com/frahmantamala/projecthub/internal/core/user"
	"github.com/frahmantamala/projecthub/internal/notification"
)

type RepositoryAPI interface {
	Create(ctx context.Context, t *Training, participantIDs []int64) error
	GetByID(ctx context.Context, id int64) (*Training, error)
	List(ctx context.Context, filter ListFilter) ([]*Training, int64, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	ParticipantIDs(ctx context.Context, trainingIDs []int64) (map[int64][]int64, error)
	AddParticipant(ctx context.Context, trainingID, userID int64) error
	RemoveParticipant(ctx context.Context, trainingID, userID int64) (bool, error)
}

type UserDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
	Summaries(ctx context.Context, ids []int64) (map[int64]*coreuser.Summary, error)
}

type Service struct {
	repo     RepositoryAPI
	users    UserDirectory
	notifier notification.Notifier
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, users UserDirectory, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, users: users, notifier: notifier, logger: logger}
}

func (s *Service) Create(ctx context.Context, dto CreateTrainingDTO) (*Training, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if dto.TrainerID != nil {
		if err := s.ensureUser(ctx, *dto.TrainerID); err != nil {
			return nil, err
		}
	}
	participants := dedupe(dto.ParticipantIDs)
	for _, id := range participants {
		if err := s.ensureUser(ctx, id); err != nil {
			return nil, err
		}
	}

	t := &Training{
		Title:       dto.Title,
		Description: dto.Description,
		TrainerID:   dto.TrainerID,
		Location:    dto.Location,
		StartDate:   dto.StartDate.Time,
		EndDate:     dto.EndDate.Ptr(),
		Status:      dto.Status,
	}
	if t.Status == StatusCompleted {
		t.Progress = ProgressComplete
	}
	if err := s.repo.Create(ctx, t, participants); err != nil {
		return nil, err
	}
	s.logger.Info("training created", "training_id", t.ID, "participants", len(participants))
	return s.Get(ctx, t.ID)
}

func (s *Service) Get(ctx context.Context, id int64) (*Training, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.withParticipants(ctx, []*Training{t}); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) (pagination.Page[*Training], error) {
	v := validation.NewValidator()
	v.Field("status", filter.Status).OneOf(Statuses...)
	if err := v.Err(); err != nil {
		return pagination.Page[*Training]{}, err
	}
	filter.Page = filter.Page.Normalize()

	trainings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return pagination.Page[*Training]{}, err
	}
	if err := s.withParticipants(ctx, trainings); err != nil {
		return pagination.Page[*Training]{}, err
	}
	return pagination.NewPage(trainings, filter.Page, total), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateTrainingDTO) (*Training, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	start, end := current.StartDate, current.EndDate
	if dto.StartDate != nil {
		start = dto.StartDate.Time
	}
	if dto.EndDate != nil {
		end = dto.EndDate.Ptr()
	}
	if end != nil {
		v := validation.NewValidator()
		v.Field("endDate", *end).NotBefore("startDate", &start)
		if err := v.Err(); err != nil {
			return nil, err
		}
	}
	if dto.TrainerID != nil {
		if err := s.ensureUser(ctx, *dto.TrainerID); err != nil {
			return nil, err
		}
	}

	fields := dto.Fields()
	if dto.Status != nil && *dto.Status == StatusCompleted {
		fields["progress"] = ProgressComplete
	}
	if len(fields) > 0 {
		if err := s.repo.Update(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != StatusCompleted && updated.Status == StatusCompleted {
		s.notifyCompleted(ctx, updated)
	}
	return updated, nil
}

// UpdateProgress stores the percentage. Reaching 100 completes the training and mails the participants;
// any progress on a scheduled training moves it to in_progress.
func (s *Service) UpdateProgress(ctx context.Context, id int64, dto ProgressDTO) (*Training, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	progress := *dto.Progress
	fields := map[string]interface{}{"progress": progress}
	switch {
	case progress == ProgressComplete:
		fields["status"] = StatusCompleted
	case progress > 0 && current.Status == StatusScheduled:
		fields["status"] = StatusInProgress
	}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, err
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("training progress updated", "training_id", id, "progress", progress, "status", updated.Status)
	if current.Status != StatusCompleted && updated.Status == StatusCompleted {
		s.notifyCompleted(ctx, updated)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("training deleted", "training_id", id)
	return nil
}

func (s *Service) AddParticipant(ctx context.Context, id int64, dto ParticipantDTO) (*Training, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.ensureUser(ctx, dto.UserID); err != nil {
		return nil, err
	}
	if err := s.repo.AddParticipant(ctx, id, dto.UserID); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) RemoveParticipant(ctx context.Context, id, userID int64) (*Training, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	removed, err := s.repo.RemoveParticipant(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, ErrNotParticipant
	}
	return s.Get(ctx, id)
}

func (s *Service) notifyCompleted(ctx context.Context, t *Training) {
	if len(t.Participants) == 0 {
		return
	}
	to := make([]notification.Recipient, len(t.Participants))
	for i, p := range t.Participants {
		to[i] = notification.Recipient{Name: p.FullName, Email: p.Email}
	}
	s.notifier.Notify(ctx, notification.TrainingCompleted(to, t.Title))
}

func (s *Service) withParticipants(ctx context.Context, trainings []*Training) error {
	if len(trainings) == 0 {
		return nil
	}
	ids := make([]int64, len(trainings))
	for i, t := range trainings {
		ids[i] = t.ID
	}
	byTraining, err := s.repo.ParticipantIDs(ctx, ids)
	if err != nil {
		return err
	}
	var all []int64
	for _, p := range byTraining {
		all = append(all, p...)
	}
	users, err := s.users.Summaries(ctx, dedupe(all))
	if err != nil {
		return err
	}
	for _, t := range trainings {
		t.Participants = make([]*coreuser.Summary, 0, len(byTraining[t.ID]))
		for _, uid := range byTraining[t.ID] {
			if u, ok := users[uid]; ok {
				t.Participants = append(t.Participants, u)
			}
		}
	}
	return nil
}

func (s *Service) ensureUser(ctx context.Context, id int64) error {
	ok, err := s.users.Exists(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to check user", err)
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
