package postgres

import (
	"context"
	"errors"

	projectDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/project"
	taskDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/task"
	worklogDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/worklog"
	"github.com/frahmantamala/projecthub/internal/task"
	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	row := task.ToDataModel(t)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	*t = *task.FromDataModel(row)
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	var row taskDatamodel.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, task.ErrNotFound
		}
		return nil, err
	}
	return task.FromDataModel(&row), nil
}

func (r *TaskRepository) List(ctx context.Context, filter task.ListFilter) ([]*task.Task, int64, error) {
	q := r.db.WithContext(ctx).Model(&taskDatamodel.Task{})
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.AssigneeID != nil {
		q = q.Where("assignee_id = ?", *filter.AssigneeID)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.VisibleTo > 0 {
		q = q.Where("(assignee_id = ? OR created_by = ?)", filter.VisibleTo, filter.VisibleTo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []taskDatamodel.Task
	if err := q.Order("created_at DESC, id DESC").Scopes(filter.Page.Scope()).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*task.Task, len(rows))
	for i := range rows {
		out[i] = task.FromDataModel(&rows[i])
	}
	return out, total, nil
}

func (r *TaskRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&taskDatamodel.Task{}).Where("id = ?", id).Updates(fields).Error
}

// Delete keeps logged hours on the project and drops the task reference.
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&worklogDatamodel.WorkLog{}).Where("task_id = ?", id).Update("task_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&taskDatamodel.Task{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return task.ErrNotFound
		}
		return nil
	})
}

func (r *TaskRepository) ProjectName(ctx context.Context, projectID int64) (string, error) {
	var row projectDatamodel.Project
	err := r.db.WithContext(ctx).Select("id", "name").Where("id = ?", projectID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", task.ErrProjectNotFound
		}
		return "", err
	}
	return row.Name, nil
}
