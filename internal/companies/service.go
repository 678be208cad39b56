package companies

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"scanid.app/internal/auth"
	"scanid.app/internal/ids"
)

// Service validates input and delegates persistence to a Store.
type Service struct {
	store Store
}

func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("company store is required")
	}
	return &Service{store: store}, nil
}

// Create registers a company under a system edition. PIN protection starts
// fully disabled.
func (s *Service) Create(ctx context.Context, editionID, name string) (Company, error) {
	editionID = strings.TrimSpace(editionID)
	if editionID == "" {
		return Company{}, fmt.Errorf("%w: system_edition_id is required", ErrInvalidInput)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Company{}, fmt.Errorf("%w: company name is required", ErrInvalidInput)
	}

	now := time.Now().UTC()
	company := Company{
		ID:              ids.New(),
		SystemEditionID: editionID,
		Name:            name,
		PinOptions:      PinOptions{},
		PinSettings:     PinSettings{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Create(ctx, &company); err != nil {
		return Company{}, err
	}
	return company, nil
}

func (s *Service) Get(ctx context.Context, id string) (Company, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Company{}, fmt.Errorf("%w: company_id is required", ErrInvalidInput)
	}
	return s.store.Find(ctx, id)
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]Company, int, error) {
	q.Filter = q.Filter.Normalized()
	return s.store.List(ctx, q)
}

func (s *Service) Update(ctx context.Context, id string, upd Update) (Company, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Company{}, fmt.Errorf("%w: company_id is required", ErrInvalidInput)
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return Company{}, fmt.Errorf("%w: company name is required", ErrInvalidInput)
		}
		upd.Name = &name
	}
	return s.store.Update(ctx, id, upd)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: company_id is required", ErrInvalidInput)
	}
	return s.store.Delete(ctx, id)
}

// PinConfig is the full PIN-management payload.
type PinConfig struct {
	MasterPin   *string
	PinOptions  *PinOptions
	PinSettings *PinSettings
}

// ConfigurePin updates the company's PIN options/settings and, when a master
// PIN is supplied, stores it hashed.
func (s *Service) ConfigurePin(ctx context.Context, id string, cfg PinConfig) (Company, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Company{}, fmt.Errorf("%w: company_id is required", ErrInvalidInput)
	}
	if cfg.MasterPin != nil {
		hash, err := auth.HashPin(strings.TrimSpace(*cfg.MasterPin))
		if err != nil {
			return Company{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
		}
		if err := s.store.SetMasterPin(ctx, id, hash); err != nil {
			return Company{}, err
		}
	}
	return s.store.Update(ctx, id, Update{PinOptions: cfg.PinOptions, PinSettings: cfg.PinSettings})
}

// VerifyPin checks a plaintext PIN against the stored master PIN hash.
func (s *Service) VerifyPin(ctx context.Context, id, pin string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: company_id is required", ErrInvalidInput)
	}
	company, err := s.store.Find(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.VerifyPin(company.EncryptedMasterPin, strings.TrimSpace(pin)); err != nil {
		return ErrPinMismatch
	}
	return nil
}
