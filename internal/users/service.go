package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"scanid.app/internal/access"
	"scanid.app/internal/auth"
	"scanid.app/internal/ids"
)

// Service validates input and delegates persistence to a Store.
type Service struct {
	store Store
}

func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("user store is required")
	}
	return &Service{store: store}, nil
}

// CreateInput is the admin-facing creation payload.
type CreateInput struct {
	SystemEditionID string
	CompanyID       string
	Email           string
	FirstName       string
	LastName        string
	Role            string
	Password        string
}

// Create registers a user with an explicit role. The role must exist in the
// static table and company-scoped roles must name a company.
func (s *Service) Create(ctx context.Context, in CreateInput) (User, error) {
	in.SystemEditionID = strings.TrimSpace(in.SystemEditionID)
	if in.SystemEditionID == "" {
		return User{}, fmt.Errorf("%w: system_edition_id is required", ErrInvalidInput)
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return User{}, err
	}
	role, ok := access.ParseRole(in.Role)
	if !ok {
		return User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, in.Role)
	}
	in.CompanyID = strings.TrimSpace(in.CompanyID)
	if def, _ := access.Definition(role); def.Scope == access.ScopeCompany && in.CompanyID == "" {
		return User{}, fmt.Errorf("%w: role %s requires a company_id", ErrInvalidInput, role)
	}
	if strings.TrimSpace(in.Password) == "" {
		return User{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	hash, err := auth.HashPassword(strings.TrimSpace(in.Password))
	if err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	user := User{
		ID:              ids.New(),
		SystemEditionID: in.SystemEditionID,
		CompanyID:       in.CompanyID,
		Email:           email,
		FirstName:       strings.TrimSpace(in.FirstName),
		LastName:        strings.TrimSpace(in.LastName),
		Role:            string(role),
		Status:          StatusActive,
		PasswordHash:    hash,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Create(ctx, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Register is the self-service path: the account always gets the user role.
func (s *Service) Register(ctx context.Context, editionID, companyID, email, firstName, lastName, password string) (User, error) {
	return s.Create(ctx, CreateInput{
		SystemEditionID: editionID,
		CompanyID:       companyID,
		Email:           email,
		FirstName:       firstName,
		LastName:        lastName,
		Role:            string(access.RoleUser),
		Password:        password,
	})
}

// Authenticate verifies credentials and returns the account when the
// password matches and the account is active.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	if strings.TrimSpace(password) == "" {
		return User{}, ErrInvalidCredentials
	}
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if user.Status != StatusActive {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	return s.store.Find(ctx, id)
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]User, int, error) {
	q.Filter = q.Filter.Normalized()
	return s.store.List(ctx, q)
}

func (s *Service) Update(ctx context.Context, id string, upd Update) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if upd.Email != nil {
		email, err := normalizeEmail(*upd.Email)
		if err != nil {
			return User{}, err
		}
		upd.Email = &email
	}
	if upd.Role != nil {
		role, ok := access.ParseRole(*upd.Role)
		if !ok {
			return User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, *upd.Role)
		}
		str := string(role)
		upd.Role = &str
	}
	if upd.Status != nil {
		status := strings.TrimSpace(strings.ToLower(*upd.Status))
		if status != StatusActive && status != StatusDisabled {
			return User{}, fmt.Errorf("%w: unsupported status %s", ErrInvalidInput, status)
		}
		upd.Status = &status
	}
	if upd.Password != nil {
		pw := strings.TrimSpace(*upd.Password)
		if pw == "" {
			return User{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
		}
		hash, err := auth.HashPassword(pw)
		if err != nil {
			return User{}, err
		}
		upd.Password = &hash
	}
	if upd.FirstName != nil {
		trimmed := strings.TrimSpace(*upd.FirstName)
		upd.FirstName = &trimmed
	}
	if upd.LastName != nil {
		trimmed := strings.TrimSpace(*upd.LastName)
		upd.LastName = &trimmed
	}
	if upd.CompanyID != nil {
		trimmed := strings.TrimSpace(*upd.CompanyID)
		upd.CompanyID = &trimmed
	}
	return s.store.Update(ctx, id, upd)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	return s.store.Delete(ctx, id)
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	return email, nil
}
