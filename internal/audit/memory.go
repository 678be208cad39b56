package audit

import (
	"context"
	"strings"
	"sync"
)

// InMemory implements Store for tests and local development. Entries are
// kept newest-first.
type InMemory struct {
	mu      sync.RWMutex
	entries []Entry
}

var _ Store = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Append(_ context.Context, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]Entry{*e}, s.entries...)
	return nil
}

func (s *InMemory) List(_ context.Context, q ListQuery) ([]Entry, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Entry
	for _, e := range s.entries {
		if q.SystemEditionID != "" && e.SystemEditionID != q.SystemEditionID {
			continue
		}
		if q.CompanyID != "" && e.CompanyID != q.CompanyID {
			continue
		}
		if q.Module != "" && e.Module != q.Module {
			continue
		}
		if q.Search != "" && !entryMatches(e, q.Search) {
			continue
		}
		matched = append(matched, e)
	}

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

func entryMatches(e Entry, term string) bool {
	term = strings.ToLower(term)
	for _, field := range []string{e.Action, e.Module, e.Description, e.UserID} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
