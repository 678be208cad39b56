package tags

import (
	"context"
	"errors"
	"strings"
	"time"

	"scanid.app/internal/pagination"
)

var (
	ErrInvalidInput = errors.New("tags: invalid input")
	ErrNotFound     = errors.New("tags: not found")
	ErrConflict     = errors.New("tags: resource conflict")
)

// Type classifies what a tag can be attached to.
type Type string

const (
	TypeDocument    Type = "document"
	TypeNote        Type = "note"
	TypeCertificate Type = "certificate"
)

// ParseType validates a raw tag type.
func ParseType(raw string) (Type, bool) {
	t := Type(strings.TrimSpace(strings.ToLower(raw)))
	switch t {
	case TypeDocument, TypeNote, TypeCertificate:
		return t, true
	}
	return "", false
}

// Tag belongs to exactly one system edition and is soft-deletable.
type Tag struct {
	ID              string     `json:"id"`
	SystemEditionID string     `json:"system_edition_id"`
	Name            string     `json:"name"`
	Color           string     `json:"color,omitempty"`
	Type            Type       `json:"type"`
	IsActive        bool       `json:"is_active"`
	SortOrder       int        `json:"sort_order"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
}

// ListQuery scopes and paginates tag listings. Soft-deleted tags are always
// excluded; inactive ones only when IncludeInactive is set.
type ListQuery struct {
	SystemEditionID string
	Type            Type
	IncludeInactive bool
	pagination.Filter
}

// Update carries optional field changes; nil means "leave as is".
type Update struct {
	Name      *string
	Color     *string
	IsActive  *bool
	SortOrder *int
}

// OrderUpdate is one element of a batch reorder.
type OrderUpdate struct {
	ID        string `json:"id"`
	SortOrder int    `json:"sort_order"`
}

// Stats summarizes the live tags of one system edition.
type Stats struct {
	Total    int          `json:"total"`
	Active   int          `json:"active"`
	Inactive int          `json:"inactive"`
	ByType   map[Type]int `json:"by_type"`
}

// Store describes tag persistence. Merge and Reorder are transactional:
// either every row changes or none does.
type Store interface {
	Create(ctx context.Context, t *Tag) error
	Find(ctx context.Context, id string) (Tag, error)
	List(ctx context.Context, q ListQuery) ([]Tag, int, error)
	Update(ctx context.Context, id string, upd Update) (Tag, error)
	SoftDelete(ctx context.Context, id string) error
	Merge(ctx context.Context, editionID string, sourceIDs []string, targetID string) error
	Reorder(ctx context.Context, editionID string, updates []OrderUpdate) error
	Stats(ctx context.Context, editionID string) (Stats, error)
}
