// Package superadmin aggregates platform-wide dashboard metrics for the
// global administration views.
package superadmin

import (
	"context"
	"errors"
	"time"
)

// Metrics is a point-in-time snapshot of platform totals.
type Metrics struct {
	TotalSystemEditions    int       `json:"total_system_editions"`
	TotalCompanies         int       `json:"total_companies"`
	TotalUsers             int       `json:"total_users"`
	ActiveUsers            int       `json:"active_users"`
	TotalTags              int       `json:"total_tags"`
	PendingDelegateInvites int       `json:"pending_delegate_invites"`
	GeneratedAt            time.Time `json:"generated_at"`
}

// Store produces a fresh snapshot straight from the backing database.
type Store interface {
	Snapshot(ctx context.Context) (Metrics, error)
}

// Service serves dashboard metrics, fronting the store with an optional
// cache. A nil cache means every read hits the store.
type Service struct {
	store Store
	cache Cache
	ttl   time.Duration
	now   func() time.Time
}

const defaultCacheTTL = 30 * time.Second

type Option func(*Service)

// WithCache installs a metrics cache with the given TTL.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides time lookup for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("superadmin store is required")
	}
	s := &Service{store: store, ttl: defaultCacheTTL, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DashboardMetrics returns the current snapshot, served from cache when a
// fresh enough copy exists. Cache failures fall through to the store so a
// Redis outage degrades to slower reads, not errors.
func (s *Service) DashboardMetrics(ctx context.Context) (Metrics, error) {
	if s.cache != nil {
		if m, err := s.cache.Get(ctx); err == nil {
			return m, nil
		}
	}

	m, err := s.store.Snapshot(ctx)
	if err != nil {
		return Metrics{}, err
	}
	if m.GeneratedAt.IsZero() {
		m.GeneratedAt = s.now().UTC()
	}

	if s.cache != nil {
		// Best effort: a failed write only costs the next reader a
		// store round-trip.
		_ = s.cache.Set(ctx, m, s.ttl)
	}
	return m, nil
}
