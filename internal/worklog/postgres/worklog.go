package postgres

import (
	"context"
	"errors"

	projectDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/project"
	taskDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/task"
	worklogDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/worklog"
	"github.com/frahmantamala/projecthub/internal/worklog"
	"gorm.io/gorm"
)

type WorkLogRepository struct {
	db *gorm.DB
}

func NewWorkLogRepository(db *gorm.DB) *WorkLogRepository {
	return &WorkLogRepository{db: db}
}

func (r *WorkLogRepository) Create(ctx context.Context, w *worklog.WorkLog) error {
	row := worklog.ToDataModel(w)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	*w = *worklog.FromDataModel(row)
	return nil
}

func (r *WorkLogRepository) GetByID(ctx context.Context, id int64) (*worklog.WorkLog, error) {
	var row worklogDatamodel.WorkLog
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, worklog.ErrNotFound
		}
		return nil, err
	}
	return worklog.FromDataModel(&row), nil
}

func (r *WorkLogRepository) List(ctx context.Context, filter worklog.ListFilter) ([]*worklog.WorkLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&worklogDatamodel.WorkLog{})
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.TaskID != nil {
		q = q.Where("task_id = ?", *filter.TaskID)
	}
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.From != nil {
		q = q.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("date <= ?", *filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []worklogDatamodel.WorkLog
	if err := q.Order("date DESC, id DESC").Scopes(filter.Page.Scope()).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*worklog.WorkLog, len(rows))
	for i := range rows {
		out[i] = worklog.FromDataModel(&rows[i])
	}
	return out, total, nil
}

func (r *WorkLogRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&worklogDatamodel.WorkLog{}).Where("id = ?", id).Updates(fields).Error
}

func (r *WorkLogRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&worklogDatamodel.WorkLog{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return worklog.ErrNotFound
	}
	return nil
}

func (r *WorkLogRepository) HoursByProject(ctx context.Context, filter worklog.SummaryFilter) ([]worklog.ProjectHours, error) {
	q := r.db.WithContext(ctx).
		Table("work_logs AS w").
		Select("w.project_id AS project_id, p.name AS project_name, SUM(w.hours) AS hours, COUNT(w.id) AS entries").
		Joins("JOIN projects p ON p.id = w.project_id")
	if filter.UserID != nil {
		q = q.Where("w.user_id = ?", *filter.UserID)
	}
	if filter.From != nil {
		q = q.Where("w.date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("w.date <= ?", *filter.To)
	}

	var rows []worklog.ProjectHours
	err := q.Group("w.project_id, p.name").Order("hours DESC, w.project_id ASC").Scan(&rows).Error
	return rows, err
}

func (r *WorkLogRepository) ProjectExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&projectDatamodel.Project{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *WorkLogRepository) TaskProject(ctx context.Context, taskID int64) (int64, error) {
	var row taskDatamodel.Task
	err := r.db.WithContext(ctx).Select("id", "project_id").Where("id = ?", taskID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, worklog.ErrTaskNotFound
		}
		return 0, err
	}
	return row.ProjectID, nil
}
