package users

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// InMemory implements Store with in-process concurrency safety. Used by
// tests and local development.
type InMemory struct {
	mu    sync.RWMutex
	byID  map[string]User
	order []string
}

var _ Store = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[string]User)}
}

func (s *InMemory) Create(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Email == u.Email {
			return ErrConflict
		}
	}
	s.byID[u.ID] = *u
	s.order = append(s.order, u.ID)
	return nil
}

func (s *InMemory) Find(_ context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *InMemory) List(_ context.Context, q ListQuery) ([]User, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []User
	for _, id := range s.order {
		u := s.byID[id]
		if q.SystemEditionID != "" && u.SystemEditionID != q.SystemEditionID {
			continue
		}
		if q.CompanyID != "" && u.CompanyID != q.CompanyID {
			continue
		}
		if q.Search != "" && !matchesSearch(u, q.Search) {
			continue
		}
		matched = append(matched, u)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Email < matched[j].Email })

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

func (s *InMemory) Update(_ context.Context, id string, upd Update) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	if upd.Email != nil {
		for otherID, other := range s.byID {
			if otherID != id && other.Email == *upd.Email {
				return User{}, ErrConflict
			}
		}
		u.Email = *upd.Email
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.CompanyID != nil {
		u.CompanyID = *upd.CompanyID
	}
	if upd.Password != nil {
		u.PasswordHash = *upd.Password
	}
	if upd.Status != nil {
		u.Status = *upd.Status
	}
	u.UpdatedAt = time.Now().UTC()
	s.byID[id] = u
	return u, nil
}

func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func matchesSearch(u User, term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(u.Email), term) ||
		strings.Contains(strings.ToLower(u.FirstName), term) ||
		strings.Contains(strings.ToLower(u.LastName), term)
}
