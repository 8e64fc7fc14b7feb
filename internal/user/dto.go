package user

import (
	"strings"

	"github.com/frahmantamala/projecthub/internal/auth"
	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
	"github.com/frahmantamala/projecthub/internal/core/common/validation"
)

type CreateUserDTO struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	IsActive  *bool  `json:"isActive,omitempty"`
}

func (d *CreateUserDTO) Validate() error {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	if d.Role == "" {
		d.Role = auth.RoleEmployee
	}
	v := validation.NewValidator()
	v.Field("firstName", d.FirstName).Required().MaxLength(100)
	v.Field("lastName", d.LastName).MaxLength(100)
	v.Field("email", d.Email).Required().Email()
	v.Field("password", d.Password).Required().MinLength(8)
	v.Field("role", d.Role).OneOf(auth.RoleAdmin, auth.RoleManager, auth.RoleEmployee)
	return v.Err()
}

type UpdateUserDTO struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty"`
	Password  *string `json:"password,omitempty"`
	Role      *string `json:"role,omitempty"`
	IsActive  *bool   `json:"isActive,omitempty"`
}

func (d *UpdateUserDTO) Validate() error {
	v := validation.NewValidator()
	if d.FirstName != nil {
		v.Field("firstName", *d.FirstName).Required().MaxLength(100)
	}
	if d.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*d.Email))
		d.Email = &e
		v.Field("email", e).Required().Email()
	}
	if d.Password != nil {
		v.Field("password", *d.Password).Required().MinLength(8)
	}
	if d.Role != nil {
		v.Field("role", *d.Role).Required().OneOf(auth.RoleAdmin, auth.RoleManager, auth.RoleEmployee)
	}
	return v.Err()
}

type ListFilter struct {
	Role     string
	Search   string
	IsActive *bool
	Page     pagination.Params
}
