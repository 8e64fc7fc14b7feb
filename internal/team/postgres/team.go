package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/frahmantamala/projecthub/internal/core/database"
	projectDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/project"
	teamDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/team"
	"github.com/frahmantamala/projecthub/internal/team"
	"gorm.io/gorm"
)

type TeamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) Create(ctx context.Context, t *team.Team, memberIDs []int64) error {
	row := team.ToDataModel(t)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		if len(memberIDs) == 0 {
			return nil
		}
		members := make([]teamDatamodel.TeamMember, len(memberIDs))
		for i, uid := range memberIDs {
			members[i] = teamDatamodel.TeamMember{TeamID: row.ID, UserID: uid}
		}
		return tx.Create(&members).Error
	})
	if err != nil {
		return err
	}
	*t = *team.FromDataModel(row)
	return nil
}

func (r *TeamRepository) GetByID(ctx context.Context, id int64) (*team.Team, error) {
	var row teamDatamodel.Team
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, team.ErrNotFound
		}
		return nil, err
	}
	return team.FromDataModel(&row), nil
}

func (r *TeamRepository) List(ctx context.Context, filter team.ListFilter) ([]*team.Team, int64, error) {
	q := r.db.WithContext(ctx).Model(&teamDatamodel.Team{})
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []teamDatamodel.Team
	if err := q.Order("name ASC, id ASC").Scopes(filter.Page.Scope()).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*team.Team, len(rows))
	for i := range rows {
		out[i] = team.FromDataModel(&rows[i])
	}
	return out, total, nil
}

func (r *TeamRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&teamDatamodel.Team{}).Where("id = ?", id).Updates(fields).Error
}

func (r *TeamRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", id).Delete(&teamDatamodel.TeamMember{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&teamDatamodel.Team{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return team.ErrNotFound
		}
		return nil
	})
}

func (r *TeamRepository) MemberIDs(ctx context.Context, teamIDs []int64) (map[int64][]int64, error) {
	var rows []teamDatamodel.TeamMember
	if err := r.db.WithContext(ctx).Where("team_id IN ?", teamIDs).Order("joined_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[int64][]int64, len(teamIDs))
	for _, m := range rows {
		out[m.TeamID] = append(out[m.TeamID], m.UserID)
	}
	return out, nil
}

func (r *TeamRepository) AddMember(ctx context.Context, teamID, userID int64) error {
	err := r.db.WithContext(ctx).Create(&teamDatamodel.TeamMember{TeamID: teamID, UserID: userID}).Error
	if database.IsUniqueViolation(err) {
		return team.ErrAlreadyMember
	}
	return err
}

func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, userID int64) (bool, error) {
	res := r.db.WithContext(ctx).Where("team_id = ? AND user_id = ?", teamID, userID).Delete(&teamDatamodel.TeamMember{})
	return res.RowsAffected > 0, res.Error
}

func (r *TeamRepository) ProjectExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&projectDatamodel.Project{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
