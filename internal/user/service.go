package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/auth"
	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
)

type RepositoryAPI interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	List(ctx context.Context, filter ListFilter) ([]*User, int64, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
}

// PermissionLoader resolves effective permissions for the profile endpoint.
type PermissionLoader interface {
	GetUserWithPermissions(ctx context.Context, userID int64) (*auth.User, error)
}

type Service struct {
	repo        RepositoryAPI
	permissions PermissionLoader
	bcryptCost  int
	logger      *slog.Logger
}

func NewService(repo RepositoryAPI, permissions PermissionLoader, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		permissions: permissions,
		bcryptCost:  bcryptCost,
		logger:      logger,
	}
}

func (s *Service) Create(ctx context.Context, dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	taken, err := s.repo.EmailExists(ctx, dto.Email, 0)
	if err != nil {
		return nil, internal.NewInternalError("failed to check email", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	u := &User{
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		Email:        dto.Email,
		PasswordHash: hash,
		Role:         dto.Role,
		IsActive:     true,
	}
	if dto.IsActive != nil {
		u.IsActive = *dto.IsActive
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// Me returns the caller's profile with effective permissions.
func (s *Service) Me(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.permissions != nil {
		withPerms, err := s.permissions.GetUserWithPermissions(ctx, id)
		if err != nil && !errors.Is(err, auth.ErrUserNotFound) {
			return nil, err
		}
		if withPerms != nil {
			u.Permissions = withPerms.Permissions
		}
	}
	return u, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) (pagination.Page[*User], error) {
	filter.Page = filter.Page.Normalize()
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return pagination.Page[*User]{}, err
	}
	return pagination.NewPage(users, filter.Page, total), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if dto.FirstName != nil {
		fields["first_name"] = *dto.FirstName
	}
	if dto.LastName != nil {
		fields["last_name"] = *dto.LastName
	}
	if dto.Email != nil {
		taken, err := s.repo.EmailExists(ctx, *dto.Email, id)
		if err != nil {
			return nil, internal.NewInternalError("failed to check email", err)
		}
		if taken {
			return nil, ErrEmailTaken
		}
		fields["email"] = *dto.Email
	}
	if dto.Password != nil {
		hash, err := auth.HashPassword(*dto.Password, s.bcryptCost)
		if err != nil {
			return nil, internal.NewInternalError("failed to hash password", err)
		}
		fields["password_hash"] = hash
	}
	if dto.Role != nil {
		fields["role"] = *dto.Role
	}
	if dto.IsActive != nil {
		fields["is_active"] = *dto.IsActive
	}

	if len(fields) > 0 {
		if err := s.repo.Update(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id, requesterID int64) error {
	if id == requesterID {
		return internal.NewValidationError("You cannot delete your own account", internal.ErrCodeValidationFailed)
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", "user_id", id, "deleted_by", requesterID)
	return nil
}
