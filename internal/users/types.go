package users

import (
	"context"
	"errors"
	"time"

	"scanid.app/internal/pagination"
)

var (
	ErrInvalidInput       = errors.New("users: invalid input")
	ErrNotFound           = errors.New("users: not found")
	ErrConflict           = errors.New("users: resource conflict")
	ErrInvalidCredentials = errors.New("users: invalid credentials")
)

const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// User is a platform account, scoped to a system edition and optionally a
// company. PasswordHash never leaves the service layer.
type User struct {
	ID              string    `json:"id"`
	SystemEditionID string    `json:"system_edition_id"`
	CompanyID       string    `json:"company_id,omitempty"`
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Role            string    `json:"role"`
	Status          string    `json:"status"`
	PasswordHash    string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ListQuery combines tenancy scoping with the uniform pagination filter.
// Empty scope fields mean "not restricted".
type ListQuery struct {
	SystemEditionID string
	CompanyID       string
	pagination.Filter
}

// Update carries optional field changes; nil means "leave as is".
type Update struct {
	Email     *string
	FirstName *string
	LastName  *string
	Role      *string
	CompanyID *string
	Password  *string
	Status    *string
}

// Store describes user persistence.
type Store interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context, q ListQuery) ([]User, int, error)
	Update(ctx context.Context, id string, upd Update) (User, error)
	Delete(ctx context.Context, id string) error
}
