package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/projecthub/internal/auth"
	userDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetCredentials(ctx context.Context, email string) (*auth.Credentials, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).
		Select("id", "email", "password_hash", "is_active").
		Where("email = ?", email).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return &auth.Credentials{
		UserID:       row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		IsActive:     row.IsActive,
	}, nil
}

// GetUserWithPermissions loads an active user and merges role permissions with explicit grants.
func (r *Repository) GetUserWithPermissions(ctx context.Context, userID int64) (*auth.User, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", userID, true).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}

	var granted []string
	err = r.db.WithContext(ctx).
		Table("permissions p").
		Select("p.name").
		Joins("JOIN user_permissions up ON p.id = up.permission_id").
		Where("up.user_id = ?", userID).
		Pluck("p.name", &granted).Error
	if err != nil {
		return nil, err
	}

	return &auth.User{
		ID:          row.ID,
		Email:       row.Email,
		FirstName:   row.FirstName,
		LastName:    row.LastName,
		Role:        row.Role,
		Permissions: auth.EffectivePermissions(row.Role, granted),
	}, nil
}
