package auth

import (
	"strings"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/core/common/validation"
)

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d *LoginDTO) Validate() error {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email()
	v.Field("password", d.Password).Required()
	return v.Err()
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refreshToken"`
}

func (d RefreshTokenDTO) Validate() error {
	if strings.TrimSpace(d.RefreshToken) == "" {
		return internal.NewValidationFieldError("refreshToken", "refreshToken is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
