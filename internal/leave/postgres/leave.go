package postgres

import (
	"context"
	"errors"

	leaveDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/leave"
	"github.com/frahmantamala/projecthub/internal/leave"
	"gorm.io/gorm"
)

type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) Create(ctx context.Context, l *leave.Leave) error {
	row := leave.ToDataModel(l)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	*l = *leave.FromDataModel(row)
	return nil
}

func (r *LeaveRepository) GetByID(ctx context.Context, id int64) (*leave.Leave, error) {
	var row leaveDatamodel.Leave
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leave.ErrNotFound
		}
		return nil, err
	}
	return leave.FromDataModel(&row), nil
}

func (r *LeaveRepository) List(ctx context.Context, filter leave.ListFilter) ([]*leave.Leave, int64, error) {
	q := r.db.WithContext(ctx).Model(&leaveDatamodel.Leave{})
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []leaveDatamodel.Leave
	if err := q.Order("start_date DESC, id DESC").Scopes(filter.Page.Scope()).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*leave.Leave, len(rows))
	for i := range rows {
		out[i] = leave.FromDataModel(&rows[i])
	}
	return out, total, nil
}

func (r *LeaveRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&leaveDatamodel.Leave{}).Where("id = ?", id).Updates(fields).Error
}

func (r *LeaveRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&leaveDatamodel.Leave{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return leave.ErrNotFound
	}
	return nil
}
