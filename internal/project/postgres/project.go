package postgres

import (
	"context"
	"errors"
	"strings"

	clientDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/client"
	documentDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/document"
	projectDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/project"
	reportDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/report"
	taskDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/task"
	teamDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/team"
	worklogDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/worklog"
	"github.com/frahmantamala/projecthub/internal/project"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) error {
	row := project.ToDataModel(p)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	*p = *project.FromDataModel(row)
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*project.Project, error) {
	var row projectDatamodel.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, project.ErrNotFound
		}
		return nil, err
	}
	return project.FromDataModel(&row), nil
}

func (r *ProjectRepository) List(ctx context.Context, filter project.ListFilter) ([]*project.Project, int64, error) {
	q := r.db.WithContext(ctx).Model(&projectDatamodel.Project{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ClientID != nil {
		q = q.Where("client_id = ?", *filter.ClientID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}
	if filter.VisibleTo > 0 {
		q = q.Where("(manager_id = ? OR id IN (?))", filter.VisibleTo, r.taskProjects(ctx, filter.VisibleTo))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []projectDatamodel.Project
	if err := q.Order("created_at DESC, id DESC").Scopes(filter.Page.Scope()).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*project.Project, len(rows))
	for i := range rows {
		out[i] = project.FromDataModel(&rows[i])
	}
	return out, total, nil
}

func (r *ProjectRepository) taskProjects(ctx context.Context, userID int64) *gorm.DB {
	return r.db.WithContext(ctx).Model(&taskDatamodel.Task{}).
		Select("project_id").
		Where("assignee_id = ? OR created_by = ?", userID, userID)
}

func (r *ProjectRepository) IsVisibleTo(ctx context.Context, projectID, userID int64) (bool, error) {
	var count int64
	err := r.taskProjects(ctx, userID).Where("project_id = ?", projectID).Count(&count).Error
	return count > 0, err
}

func (r *ProjectRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&projectDatamodel.Project{}).Where("id = ?", id).Updates(fields).Error
}

func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&taskDatamodel.Task{}).Error; err != nil {
			return err
		}
		for _, model := range []interface{}{&teamDatamodel.Team{}, &reportDatamodel.Report{}, &documentDatamodel.Document{}} {
			if err := tx.Model(model).Where("project_id = ?", id).Update("project_id", nil).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ?", id).Delete(&projectDatamodel.Project{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return project.ErrNotFound
		}
		return nil
	})
}

func (r *ProjectRepository) ClientExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&clientDatamodel.Client{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *ProjectRepository) CountWorkLogs(ctx context.Context, projectID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&worklogDatamodel.WorkLog{}).Where("project_id = ?", projectID).Count(&count).Error
	return count, err
}
