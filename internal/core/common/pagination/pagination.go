package pagination

import (
	"math"

	"gorm.io/gorm"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params is the requested page window. Zero values fall back to the defaults.
type Params struct {
	Page  int
	Limit int
}

func New(page, limit int) Params {
	if page <= 0 {
		page = DefaultPage
	}
	switch {
	case limit > MaxLimit:
		limit = MaxLimit
	case limit <= 0:
		limit = DefaultLimit
	}
	// The offset must fit a 32-bit SQL integer.
	if maxPage := (math.MaxInt32-1)/limit + 1; page > maxPage {
		page = maxPage
	}
	return Params{Page: page, Limit: limit}
}

func (p Params) Normalize() Params {
	return New(p.Page, p.Limit)
}

func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// Scope applies offset and limit to a gorm query.
func (p Params) Scope() func(db *gorm.DB) *gorm.DB {
	n := p.Normalize()
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(n.Offset()).Limit(n.Limit)
	}
}

// Meta is the pagination envelope returned by every list endpoint.
type Meta struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
}

func NewMeta(p Params, totalItems int64) Meta {
	n := p.Normalize()
	totalPages := 0
	if totalItems > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(n.Limit)))
	}
	return Meta{
		CurrentPage:  n.Page,
		TotalPages:   totalPages,
		TotalItems:   totalItems,
		ItemsPerPage: n.Limit,
	}
}

// Page is a slice of items plus its envelope.
type Page[T any] struct {
	Data       []T  `json:"data"`
	Pagination Meta `json:"pagination"`
}

func NewPage[T any](items []T, p Params, totalItems int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Data: items, Pagination: NewMeta(p, totalItems)}
}

// Map converts the items of a page while keeping the envelope.
func Map[T, U any](page Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(page.Data))
	for i, item := range page.Data {
		out[i] = fn(item)
	}
	return Page[U]{Data: out, Pagination: page.Pagination}
}
