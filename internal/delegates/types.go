package delegates

import (
	"context"
	"errors"
	"time"

	"scanid.app/internal/pagination"
)

var (
	ErrInvalidInput = errors.New("delegates: invalid input")
	ErrNotFound     = errors.New("delegates: not found")
	ErrConflict     = errors.New("delegates: resource conflict")
	ErrInvalidToken = errors.New("delegates: invalid invite token")
	ErrExpired      = errors.New("delegates: invite expired")
)

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRevoked  = "revoked"
	StatusExpired  = "expired"
)

// Access is a delegate-access grant: an invitation for an external person to
// act with the delegate role inside one company. The invite token is stored
// hashed; the plaintext leaves the service exactly once, at invite time.
type Access struct {
	ID              string     `json:"id"`
	SystemEditionID string     `json:"system_edition_id"`
	CompanyID       string     `json:"company_id"`
	Email           string     `json:"email"`
	InvitedByUserID string     `json:"invited_by_user_id"`
	Status          string     `json:"status"`
	TokenHash       string     `json:"-"`
	ExpiresAt       time.Time  `json:"expires_at"`
	AcceptedAt      *time.Time `json:"accepted_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ListQuery scopes and paginates delegate-access listings.
type ListQuery struct {
	SystemEditionID string
	CompanyID       string
	Status          string
	pagination.Filter
}

// Store describes delegate-access persistence.
type Store interface {
	Create(ctx context.Context, a *Access) error
	Find(ctx context.Context, id string) (Access, error)
	List(ctx context.Context, q ListQuery) ([]Access, int, error)
	UpdateStatus(ctx context.Context, id, status string, acceptedAt *time.Time) error
}
