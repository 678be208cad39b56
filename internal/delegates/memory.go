package delegates

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// InMemory implements Store for tests and local development.
type InMemory struct {
	mu   sync.RWMutex
	byID map[string]Access
}

var _ Store = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[string]Access)}
}

func (s *InMemory) Create(_ context.Context, a *Access) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.CompanyID == a.CompanyID && existing.Email == a.Email && existing.Status == StatusPending {
			return ErrConflict
		}
	}
	s.byID[a.ID] = *a
	return nil
}

func (s *InMemory) Find(_ context.Context, id string) (Access, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return Access{}, ErrNotFound
	}
	return a, nil
}

func (s *InMemory) List(_ context.Context, q ListQuery) ([]Access, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Access
	for _, a := range s.byID {
		if q.SystemEditionID != "" && a.SystemEditionID != q.SystemEditionID {
			continue
		}
		if q.CompanyID != "" && a.CompanyID != q.CompanyID {
			continue
		}
		if q.Status != "" && a.Status != q.Status {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(a.Email), strings.ToLower(q.Search)) {
			continue
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := len(matched)
	offset := q.Offset()
	if offset >= total {
		return nil, total, nil
	}
	end := offset + q.Normalized().Limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (s *InMemory) UpdateStatus(_ context.Context, id, status string, acceptedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	if acceptedAt != nil {
		a.AcceptedAt = acceptedAt
	}
	a.UpdatedAt = time.Now().UTC()
	s.byID[id] = a
	return nil
}
