package client

import (
	"time"

	"github.com/frahmantamala/projecthub/internal"
	clientDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/client"
)

type Client struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Phone     string       `json:"phone"`
	Company   string       `json:"company"`
	Address   string       `json:"address"`
	Projects  []ProjectRef `json:"projects,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

type ProjectRef struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

var (
	ErrNotFound          = internal.NewNotFoundError("Client not found", internal.ErrCodeClientNotFound)
	ErrProjectNotFound   = internal.NewNotFoundError("Project not found", internal.ErrCodeProjectNotFound)
	ErrEmailTaken        = internal.NewConflictError("A client with this email already exists", internal.ErrCodeEmailTaken)
	ErrAlreadyAssociated = internal.NewConflictError("Project is already associated with this client", internal.ErrCodeClientAssociated)
)

func ToDataModel(c *Client) *clientDatamodel.Client {
	return &clientDatamodel.Client{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Company:   c.Company,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func FromDataModel(c *clientDatamodel.Client) *Client {
	return &Client{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Company:   c.Company,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
