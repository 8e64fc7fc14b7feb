package postgres

import (
	"context"
	"errors"
	"strings"

	documentDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/document"
	projectDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/project"
	reportDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/report"
	"github.com/frahmantamala/projecthub/internal/document"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) CreateMany(ctx context.Context, docs []*document.Document) error {
	rows := make([]*documentDatamodel.Document, len(docs))
	for i, d := range docs {
		rows[i] = document.ToDataModel(d)
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
	if err != nil {
		return err
	}
	for i, row := range rows {
		*docs[i] = *document.FromDataModel(row)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, category string, id int64) (*document.Document, error) {
	row, err := r.find(r.db.WithContext(ctx), category, id)
	if err != nil {
		return nil, err
	}
	return document.FromDataModel(row), nil
}

func (r *DocumentRepository) List(ctx context.Context, filter document.ListFilter) ([]*document.Document, int64, error) {
	q := r.db.WithContext(ctx).Model(&documentDatamodel.Document{}).Where("category = ?", filter.Category)
	if filter.ReportID != nil {
		q = q.Where("report_id = ?", *filter.ReportID)
	}
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(filter.Search))+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []documentDatamodel.Document
	if err := q.Order("created_at DESC, id DESC").Scopes(filter.Page.Scope()).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*document.Document, len(rows))
	for i := range rows {
		out[i] = document.FromDataModel(&rows[i])
	}
	return out, total, nil
}

func (r *DocumentRepository) UpdateLocked(ctx context.Context, category string, id int64, mutate document.Mutation) (*document.Document, *document.Document, error) {
	var before, after *document.Document
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := r.find(tx.Clauses(clause.Locking{Strength: "UPDATE"}), category, id)
		if err != nil {
			return err
		}
		before = document.FromDataModel(row)

		fields, err := mutate(before)
		if err != nil {
			return err
		}
		if len(fields) > 0 {
			if err := tx.Model(&documentDatamodel.Document{}).Where("id = ?", id).Updates(fields).Error; err != nil {
				return err
			}
		}

		updated, err := r.find(tx, category, id)
		if err != nil {
			return err
		}
		after = document.FromDataModel(updated)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

func (r *DocumentRepository) DeleteLocked(ctx context.Context, category string, id int64) (*document.Document, error) {
	var deleted *document.Document
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := r.find(tx.Clauses(clause.Locking{Strength: "UPDATE"}), category, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(&documentDatamodel.Document{}, row.ID).Error; err != nil {
			return err
		}
		deleted = document.FromDataModel(row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (r *DocumentRepository) ReportProject(ctx context.Context, category string, reportID int64) (*int64, error) {
	var row reportDatamodel.Report
	err := r.db.WithContext(ctx).Select("id", "project_id").
		Where("id = ? AND category = ?", reportID, category).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, document.ErrReportNotFound
		}
		return nil, err
	}
	return row.ProjectID, nil
}

func (r *DocumentRepository) ProjectExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&projectDatamodel.Project{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *DocumentRepository) find(db *gorm.DB, category string, id int64) (*documentDatamodel.Document, error) {
	var row documentDatamodel.Document
	if err := db.Where("id = ? AND category = ?", id, category).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, document.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}
