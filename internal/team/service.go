package team

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
	coreuser "github.com/frahmantamala/projecthub/internal/core/user"
)

type RepositoryAPI interface {
	Create(ctx context.Context, t *Team, memberIDs []int64) error
	GetByID(ctx context.Context, id int64) (*Team, error)
	List(ctx context.Context, filter ListFilter) ([]*Team, int64, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	MemberIDs(ctx context.Context, teamIDs []int64) (map[int64][]int64, error)
	AddMember(ctx context.Context, teamID, userID int64) error
	RemoveMember(ctx context.Context, teamID, userID int64) (bool, error)
	ProjectExists(ctx context.Context, id int64) (bool, error)
}

type UserDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
	Summaries(ctx context.Context, ids []int64) (map[int64]*coreuser.Summary, error)
}

type Service struct {
	repo   RepositoryAPI
	users  UserDirectory
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, users UserDirectory, logger *slog.Logger) *Service {
	return &Service{repo: repo, users: users, logger: logger}
}

func (s *Service) Create(ctx context.Context, dto CreateTeamDTO) (*Team, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, dto.LeadID, dto.ProjectID); err != nil {
		return nil, err
	}

	members := dedupe(dto.MemberIDs)
	for _, id := range members {
		if err := s.ensureUser(ctx, id); err != nil {
			return nil, err
		}
	}

	t := &Team{
		Name:        dto.Name,
		Description: dto.Description,
		LeadID:      dto.LeadID,
		ProjectID:   dto.ProjectID,
	}
	if err := s.repo.Create(ctx, t, members); err != nil {
		return nil, err
	}
	s.logger.Info("team created", "team_id", t.ID, "members", len(members))
	return s.Get(ctx, t.ID)
}

func (s *Service) Get(ctx context.Context, id int64) (*Team, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.withMembers(ctx, []*Team{t}); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) (pagination.Page[*Team], error) {
	filter.Page = filter.Page.Normalize()
	teams, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return pagination.Page[*Team]{}, err
	}
	if err := s.withMembers(ctx, teams); err != nil {
		return pagination.Page[*Team]{}, err
	}
	return pagination.NewPage(teams, filter.Page, total), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateTeamDTO) (*Team, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, dto.LeadID, dto.ProjectID); err != nil {
		return nil, err
	}
	if fields := dto.Fields(); len(fields) > 0 {
		if err := s.repo.Update(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("team deleted", "team_id", id)
	return nil
}

func (s *Service) AddMember(ctx context.Context, teamID int64, dto AddMemberDTO) (*Team, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, teamID); err != nil {
		return nil, err
	}
	if err := s.ensureUser(ctx, dto.UserID); err != nil {
		return nil, err
	}
	if err := s.repo.AddMember(ctx, teamID, dto.UserID); err != nil {
		return nil, err
	}
	s.logger.Info("team member added", "team_id", teamID, "user_id", dto.UserID)
	return s.Get(ctx, teamID)
}

func (s *Service) RemoveMember(ctx context.Context, teamID, userID int64) (*Team, error) {
	if _, err := s.repo.GetByID(ctx, teamID); err != nil {
		return nil, err
	}
	removed, err := s.repo.RemoveMember(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, ErrNotMember
	}
	s.logger.Info("team member removed", "team_id", teamID, "user_id", userID)
	return s.Get(ctx, teamID)
}

func (s *Service) withMembers(ctx context.Context, teams []*Team) error {
	if len(teams) == 0 {
		return nil
	}
	ids := make([]int64, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	memberIDs, err := s.repo.MemberIDs(ctx, ids)
	if err != nil {
		return err
	}

	var all []int64
	for _, m := range memberIDs {
		all = append(all, m...)
	}
	users, err := s.users.Summaries(ctx, dedupe(all))
	if err != nil {
		return err
	}
	for _, t := range teams {
		t.Members = make([]*coreuser.Summary, 0, len(memberIDs[t.ID]))
		for _, uid := range memberIDs[t.ID] {
			if u, ok := users[uid]; ok {
				t.Members = append(t.Members, u)
			}
		}
	}
	return nil
}

func (s *Service) checkReferences(ctx context.Context, leadID, projectID *int64) error {
	if leadID != nil {
		if err := s.ensureUser(ctx, *leadID); err != nil {
			return err
		}
	}
	if projectID != nil {
		ok, err := s.repo.ProjectExists(ctx, *projectID)
		if err != nil {
			return internal.NewInternalError("failed to check project", err)
		}
		if !ok {
			return ErrProjectNotFound
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
