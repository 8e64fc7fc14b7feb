package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/frahmantamala/projecthub/internal/client"
	"github.com/frahmantamala/projecthub/internal/core/database"
	clientDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/client"
	projectDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/project"
	"gorm.io/gorm"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, c *client.Client) error {
	row := client.ToDataModel(c)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return client.ErrEmailTaken
		}
		return err
	}
	*c = *client.FromDataModel(row)
	return nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id int64) (*client.Client, error) {
	var row clientDatamodel.Client
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, client.ErrNotFound
		}
		return nil, err
	}
	return client.FromDataModel(&row), nil
}

func (r *ClientRepository) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&clientDatamodel.Client{}).Where("email = ?", email)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *ClientRepository) List(ctx context.Context, filter client.ListFilter) ([]*client.Client, int64, error) {
	q := r.db.WithContext(ctx).Model(&clientDatamodel.Client{})
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(company) LIKE ?)", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []clientDatamodel.Client
	if err := q.Order("name ASC, id ASC").Scopes(filter.Page.Scope()).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*client.Client, len(rows))
	for i := range rows {
		out[i] = client.FromDataModel(&rows[i])
	}
	return out, total, nil
}

func (r *ClientRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	err := r.db.WithContext(ctx).Model(&clientDatamodel.Client{}).Where("id = ?", id).Updates(fields).Error
	if database.IsUniqueViolation(err) {
		return client.ErrEmailTaken
	}
	return err
}

func (r *ClientRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&projectDatamodel.Project{}).Where("client_id = ?", id).Update("client_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&clientDatamodel.Client{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return client.ErrNotFound
		}
		return nil
	})
}

func (r *ClientRepository) ListProjects(ctx context.Context, clientID int64) ([]client.ProjectRef, error) {
	var rows []projectDatamodel.Project
	if err := r.db.WithContext(ctx).Where("client_id = ?", clientID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	refs := make([]client.ProjectRef, len(rows))
	for i, p := range rows {
		refs[i] = client.ProjectRef{ID: p.ID, Name: p.Name, Status: p.Status}
	}
	return refs, nil
}

func (r *ClientRepository) ProjectClientID(ctx context.Context, projectID int64) (*int64, error) {
	var row projectDatamodel.Project
	err := r.db.WithContext(ctx).Select("id", "client_id").Where("id = ?", projectID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, client.ErrProjectNotFound
		}
		return nil, err
	}
	return row.ClientID, nil
}

func (r *ClientRepository) SetProjectClient(ctx context.Context, projectID, clientID int64) error {
	return r.db.WithContext(ctx).Model(&projectDatamodel.Project{}).
		Where("id = ?", projectID).
		Update("client_id", clientID).Error
}
