package client

import (
	"strings"

	"github.com/frahmantamala/projecthub/internal/core/common/pagination"
	"github.com/frahmantamala/projecthub/internal/core/common/validation"
)

type CreateClientDTO struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Address string `json:"address"`
}

func (d *CreateClientDTO) Validate() error {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(200)
	v.Field("email", d.Email).Required().Email()
	v.Field("phone", d.Phone).MaxLength(50)
	return v.Err()
}

type UpdateClientDTO struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Company *string `json:"company,omitempty"`
	Address *string `json:"address,omitempty"`
}

func (d *UpdateClientDTO) Validate() error {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", *d.Name).Required().MaxLength(200)
	}
	if d.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*d.Email))
		d.Email = &e
		v.Field("email", e).Required().Email()
	}
	if d.Phone != nil {
		v.Field("phone", *d.Phone).MaxLength(50)
	}
	return v.Err()
}

// Fields returns the column updates for the provided values only.
func (d UpdateClientDTO) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if d.Name != nil {
		fields["name"] = *d.Name
	}
	if d.Email != nil {
		fields["email"] = *d.Email
	}
	if d.Phone != nil {
		fields["phone"] = *d.Phone
	}
	if d.Company != nil {
		fields["company"] = *d.Company
	}
	if d.Address != nil {
		fields["address"] = *d.Address
	}
	return fields
}

type ListFilter struct {
	Search string
	Page   pagination.Params
}
