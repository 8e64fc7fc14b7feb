package user

import (
	"time"

	"github.com/frahmantamala/projecthub/internal"
	userDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/user"
	coreuser "github.com/frahmantamala/projecthub/internal/core/user"
)

type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	Permissions  []string  `json:"permissions,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

var (
	ErrNotFound   = internal.NewNotFoundError("User not found", internal.ErrCodeUserNotFound)
	ErrEmailTaken = internal.NewConflictError("Email is already registered", internal.ErrCodeEmailTaken)
)

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		FullName:     coreuser.FullName(u.FirstName, u.LastName),
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
