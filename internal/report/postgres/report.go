package postgres

import (
	"context"
	"errors"

	documentDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/document"
	projectDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/project"
	reportDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/report"
	"github.com/frahmantamala/projecthub/internal/report"
	"gorm.io/gorm"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, rep *report.Report) error {
	row := report.ToDataModel(rep)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	*rep = *report.FromDataModel(row)
	return nil
}

func (r *ReportRepository) GetByID(ctx context.Context, category string, id int64, withDocuments bool) (*report.Report, error) {
	q := r.db.WithContext(ctx)
	if withDocuments {
		q = q.Preload("Documents", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		})
	}
	var row reportDatamodel.Report
	if err := q.Where("id = ? AND category = ?", id, category).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, report.ErrNotFound
		}
		return nil, err
	}
	return report.FromDataModel(&row), nil
}

func (r *ReportRepository) List(ctx context.Context, filter report.ListFilter) ([]*report.Report, int64, error) {
	q := r.db.WithContext(ctx).Model(&reportDatamodel.Report{}).Where("category = ?", filter.Category)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Severity != "" {
		q = q.Where("severity = ?", filter.Severity)
	}
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []reportDatamodel.Report
	if err := q.Order("created_at DESC, id DESC").Scopes(filter.Page.Scope()).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*report.Report, len(rows))
	for i := range rows {
		out[i] = report.FromDataModel(&rows[i])
	}
	return out, total, nil
}

func (r *ReportRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&reportDatamodel.Report{}).Where("id = ?", id).Updates(fields).Error
}

func (r *ReportRepository) Delete(ctx context.Context, category string, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND category = ?", id, category).Delete(&reportDatamodel.Report{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return report.ErrNotFound
		}
		return tx.Model(&documentDatamodel.Document{}).Where("report_id = ?", id).Update("report_id", nil).Error
	})
}

func (r *ReportRepository) ProjectExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&projectDatamodel.Project{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
