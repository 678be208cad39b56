package delegates

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"scanid.app/internal/ids"
)

const defaultInviteTTL = 7 * 24 * time.Hour

// Service validates input and delegates persistence to a Store.
type Service struct {
	store     Store
	inviteTTL time.Duration
	now       func() time.Time
}

type Option func(*Service)

// WithInviteTTL overrides how long invites stay valid.
func WithInviteTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.inviteTTL = ttl
		}
	}
}

// WithClock injects a time source for tests.
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("delegate store is required")
	}
	s := &Service{store: store, inviteTTL: defaultInviteTTL, now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// InviteInput is the invitation payload.
type InviteInput struct {
	SystemEditionID string
	CompanyID       string
	Email           string
	InvitedByUserID string
}

// Invite creates a pending grant and returns it with the one-time plaintext
// invite token in the form "<id>.<secret>".
func (s *Service) Invite(ctx context.Context, in InviteInput) (Access, string, error) {
	in.SystemEditionID = strings.TrimSpace(in.SystemEditionID)
	in.CompanyID = strings.TrimSpace(in.CompanyID)
	if in.SystemEditionID == "" || in.CompanyID == "" {
		return Access{}, "", fmt.Errorf("%w: system_edition_id and company_id are required", ErrInvalidInput)
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return Access{}, "", fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	in.InvitedByUserID = strings.TrimSpace(in.InvitedByUserID)
	if in.InvitedByUserID == "" {
		return Access{}, "", fmt.Errorf("%w: invited_by_user_id is required", ErrInvalidInput)
	}

	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return Access{}, "", fmt.Errorf("generate invite secret: %w", err)
	}
	secret := hex.EncodeToString(secretBytes)

	now := s.now()
	grant := Access{
		ID:              ids.New(),
		SystemEditionID: in.SystemEditionID,
		CompanyID:       in.CompanyID,
		Email:           email,
		InvitedByUserID: in.InvitedByUserID,
		Status:          StatusPending,
		TokenHash:       hashSecret(secret),
		ExpiresAt:       now.Add(s.inviteTTL),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Create(ctx, &grant); err != nil {
		return Access{}, "", err
	}
	return grant, grant.ID + "." + secret, nil
}

// Accept redeems a pending invite token.
func (s *Service) Accept(ctx context.Context, token string) (Access, error) {
	id, secret, err := splitToken(token)
	if err != nil {
		return Access{}, ErrInvalidToken
	}
	grant, err := s.store.Find(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Access{}, ErrInvalidToken
		}
		return Access{}, err
	}
	if subtle.ConstantTimeCompare([]byte(grant.TokenHash), []byte(hashSecret(secret))) != 1 {
		return Access{}, ErrInvalidToken
	}
	if grant.Status != StatusPending {
		return Access{}, ErrInvalidToken
	}
	now := s.now()
	if now.After(grant.ExpiresAt) {
		_ = s.store.UpdateStatus(ctx, id, StatusExpired, nil)
		return Access{}, ErrExpired
	}
	if err := s.store.UpdateStatus(ctx, id, StatusAccepted, &now); err != nil {
		return Access{}, err
	}
	return s.store.Find(ctx, id)
}

// Revoke withdraws a grant regardless of its current status.
func (s *Service) Revoke(ctx context.Context, id string) (Access, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Access{}, fmt.Errorf("%w: delegate_access_id is required", ErrInvalidInput)
	}
	grant, err := s.store.Find(ctx, id)
	if err != nil {
		return Access{}, err
	}
	if grant.Status == StatusRevoked {
		return grant, nil
	}
	if err := s.store.UpdateStatus(ctx, id, StatusRevoked, nil); err != nil {
		return Access{}, err
	}
	return s.store.Find(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (Access, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Access{}, fmt.Errorf("%w: delegate_access_id is required", ErrInvalidInput)
	}
	return s.store.Find(ctx, id)
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]Access, int, error) {
	q.Filter = q.Filter.Normalized()
	return s.store.List(ctx, q)
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

func splitToken(raw string) (id, secret string, err error) {
	raw = strings.TrimSpace(raw)
	parts := strings.SplitN(raw, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.New("malformed token")
	}
	return parts[0], parts[1], nil
}
