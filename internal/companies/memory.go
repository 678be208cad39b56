package companies

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
	byID map[string]Company
}

var _ Store = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[string]Company)}
}

func (s *InMemory) Create(_ context.Context, c *Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.SystemEditionID == c.SystemEditionID && existing.Name == c.Name {
			return ErrConflict
		}
	}
	s.byID[c.ID] = *c
	return nil
}

func (s *InMemory) Find(_ context.Context, id string) (Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return Company{}, ErrNotFound
	}
	return c, nil
}

func (s *InMemory) List(_ context.Context, q ListQuery) ([]Company, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Company
	for _, c := range s.byID {
		if q.SystemEditionID != "" && c.SystemEditionID != q.SystemEditionID {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(q.Search)) {
			continue
		}
		matched = append(matched, c)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

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

func (s *InMemory) Update(_ context.Context, id string, upd Update) (Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return Company{}, ErrNotFound
	}
	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.PinOptions != nil {
		c.PinOptions = *upd.PinOptions
	}
	if upd.PinSettings != nil {
		c.PinSettings = *upd.PinSettings
	}
	c.UpdatedAt = time.Now().UTC()
	s.byID[id] = c
	return c, nil
}

func (s *InMemory) SetMasterPin(_ context.Context, id, pinHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	c.EncryptedMasterPin = pinHash
	c.UpdatedAt = time.Now().UTC()
	s.byID[id] = c
	return nil
}

func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	return nil
}
