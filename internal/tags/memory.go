package tags

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// InMemory implements Store for tests and local development. Merge and
// Reorder mutate under one lock, mirroring the transactional guarantees of
// the Postgres store.
type InMemory struct {
	mu   sync.RWMutex
	byID map[string]Tag
}

var _ Store = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[string]Tag)}
}

func (s *InMemory) Create(_ context.Context, t *Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.DeletedAt == nil &&
			existing.SystemEditionID == t.SystemEditionID &&
			existing.Type == t.Type &&
			strings.EqualFold(existing.Name, t.Name) {
			return ErrConflict
		}
	}
	s.byID[t.ID] = *t
	return nil
}

func (s *InMemory) Find(_ context.Context, id string) (Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byID[id]
	if !ok || t.DeletedAt != nil {
		return Tag{}, ErrNotFound
	}
	return t, nil
}

func (s *InMemory) List(_ context.Context, q ListQuery) ([]Tag, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Tag
	for _, t := range s.byID {
		if t.DeletedAt != nil {
			continue
		}
		if t.SystemEditionID != q.SystemEditionID {
			continue
		}
		if q.Type != "" && t.Type != q.Type {
			continue
		}
		if !q.IncludeInactive && !t.IsActive {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(q.Search)) {
			continue
		}
		matched = append(matched, t)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].SortOrder != matched[j].SortOrder {
			return matched[i].SortOrder < matched[j].SortOrder
		}
		return matched[i].Name < matched[j].Name
	})

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

func (s *InMemory) Update(_ context.Context, id string, upd Update) (Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok || t.DeletedAt != nil {
		return Tag{}, ErrNotFound
	}
	if upd.Name != nil {
		t.Name = *upd.Name
	}
	if upd.Color != nil {
		t.Color = *upd.Color
	}
	if upd.IsActive != nil {
		t.IsActive = *upd.IsActive
	}
	if upd.SortOrder != nil {
		t.SortOrder = *upd.SortOrder
	}
	t.UpdatedAt = time.Now().UTC()
	s.byID[id] = t
	return t, nil
}

func (s *InMemory) SoftDelete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok || t.DeletedAt != nil {
		return ErrNotFound
	}
	now := time.Now().UTC()
	t.DeletedAt = &now
	t.UpdatedAt = now
	s.byID[id] = t
	return nil
}

func (s *InMemory) Merge(_ context.Context, editionID string, sourceIDs []string, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.byID[targetID]
	if !ok || target.DeletedAt != nil || target.SystemEditionID != editionID {
		return ErrNotFound
	}
	for _, src := range sourceIDs {
		t, ok := s.byID[src]
		if !ok || t.DeletedAt != nil || t.SystemEditionID != editionID {
			return ErrNotFound
		}
	}
	now := time.Now().UTC()
	for _, src := range sourceIDs {
		t := s.byID[src]
		t.DeletedAt = &now
		t.UpdatedAt = now
		s.byID[src] = t
	}
	return nil
}

func (s *InMemory) Reorder(_ context.Context, editionID string, updates []OrderUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, upd := range updates {
		t, ok := s.byID[upd.ID]
		if !ok || t.DeletedAt != nil || t.SystemEditionID != editionID {
			return ErrNotFound
		}
	}
	now := time.Now().UTC()
	for _, upd := range updates {
		t := s.byID[upd.ID]
		t.SortOrder = upd.SortOrder
		t.UpdatedAt = now
		s.byID[upd.ID] = t
	}
	return nil
}

func (s *InMemory) Stats(_ context.Context, editionID string) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{ByType: make(map[Type]int)}
	for _, t := range s.byID {
		if t.DeletedAt != nil || t.SystemEditionID != editionID {
			continue
		}
		stats.Total++
		stats.ByType[t.Type]++
		if t.IsActive {
			stats.Active++
		} else {
			stats.Inactive++
		}
	}
	return stats, nil
}
