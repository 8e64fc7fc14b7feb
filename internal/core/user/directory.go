package user

import (
	"context"
	"errors"

	userDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/user"
	"gorm.io/gorm"
)

// Directory answers the cross-domain user questions: existence, summaries, mail addresses.
type Directory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

func (d *Directory) Get(ctx context.Context, id int64) (*Summary, error) {
	var row userDatamodel.User
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return SummaryFromDataModel(&row), nil
}

func (d *Directory) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := d.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Summaries returns the users found among ids; missing ids are simply absent from the map.
func (d *Directory) Summaries(ctx context.Context, ids []int64) (map[int64]*Summary, error) {
	if len(ids) == 0 {
		return map[int64]*Summary{}, nil
	}
	var rows []userDatamodel.User
	if err := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return SummaryIndex(rows), nil
}

// ActiveUsers lists every active user, used by scheduled mailings.
func (d *Directory) ActiveUsers(ctx context.Context) ([]*Summary, error) {
	var rows []userDatamodel.User
	if err := d.db.WithContext(ctx).Where("is_active = ?", true).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*Summary, len(rows))
	for i := range rows {
		out[i] = SummaryFromDataModel(&rows[i])
	}
	return out, nil
}

// ByRoles lists the active users holding any of roles.
func (d *Directory) ByRoles(ctx context.Context, roles ...string) ([]*Summary, error) {
	var rows []userDatamodel.User
	err := d.db.WithContext(ctx).
		Where("is_active = ? AND role IN ?", true, roles).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*Summary, len(rows))
	for i := range rows {
		out[i] = SummaryFromDataModel(&rows[i])
	}
	return out, nil
}
