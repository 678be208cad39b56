package companies

import (
	"context"
	"errors"
	"time"

	"scanid.app/internal/pagination"
)

var (
	ErrInvalidInput = errors.New("companies: invalid input")
	ErrNotFound     = errors.New("companies: not found")
	ErrConflict     = errors.New("companies: resource conflict")
	ErrPinMismatch  = errors.New("companies: pin mismatch")
)

// PinOptions toggles PIN protection per content type.
type PinOptions struct {
	Documents    bool `json:"documents"`
	Notes        bool `json:"notes"`
	Certificates bool `json:"certificates"`
}

// PinSettings controls when a configured PIN is demanded.
type PinSettings struct {
	RequireToView bool `json:"require_to_view"`
	RequireToEdit bool `json:"require_to_edit"`
}

// Company is a tenant unit under a system edition. A fresh company starts
// with every PIN toggle disabled and no master PIN set.
type Company struct {
	ID                 string      `json:"id"`
	SystemEditionID    string      `json:"system_edition_id"`
	Name               string      `json:"name"`
	EncryptedMasterPin string      `json:"-"`
	PinOptions         PinOptions  `json:"pin_options"`
	PinSettings        PinSettings `json:"pin_settings"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// HasMasterPin reports whether a master PIN is configured, without exposing it.
func (c Company) HasMasterPin() bool {
	return c.EncryptedMasterPin != ""
}

// ListQuery scopes and paginates company listings.
type ListQuery struct {
	SystemEditionID string
	pagination.Filter
}

// Update carries optional field changes; nil means "leave as is".
type Update struct {
	Name        *string
	PinOptions  *PinOptions
	PinSettings *PinSettings
}

// Store describes company persistence.
type Store interface {
	Create(ctx context.Context, c *Company) error
	Find(ctx context.Context, id string) (Company, error)
	List(ctx context.Context, q ListQuery) ([]Company, int, error)
	Update(ctx context.Context, id string, upd Update) (Company, error)
	SetMasterPin(ctx context.Context, id, pinHash string) error
	Delete(ctx context.Context, id string) error
}
