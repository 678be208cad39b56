// Package pagination holds the list-filter contract shared by every
// collection endpoint: page, limit and a free-text search term.
package pagination

import (
	"errors"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Filter is the uniform pagination input.
type Filter struct {
	Page   int
	Limit  int
	Search string
}

// Normalized clamps the filter into valid bounds.
func (f Filter) Normalized() Filter {
	out := f
	if out.Page < 1 {
		out.Page = 1
	}
	if out.Limit < 1 {
		out.Limit = DefaultLimit
	}
	if out.Limit > MaxLimit {
		out.Limit = MaxLimit
	}
	out.Search = strings.TrimSpace(out.Search)
	return out
}

// Offset returns the row offset for the normalized filter.
func (f Filter) Offset() int {
	n := f.Normalized()
	return (n.Page - 1) * n.Limit
}

// Parse builds a Filter from raw query values, validating the numbers.
func Parse(page, limit, search string) (Filter, error) {
	f := Filter{Page: 1, Limit: DefaultLimit, Search: strings.TrimSpace(search)}
	if strings.TrimSpace(page) != "" {
		v, err := strconv.Atoi(page)
		if err != nil || v < 1 {
			return Filter{}, errors.New("page must be a positive integer")
		}
		f.Page = v
	}
	if strings.TrimSpace(limit) != "" {
		v, err := strconv.Atoi(limit)
		if err != nil || v < 1 || v > MaxLimit {
			return Filter{}, errors.New("limit must be between 1 and 100")
		}
		f.Limit = v
	}
	return f, nil
}

// Meta describes one page of results in responses.
type Meta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// MetaFor builds response metadata for a normalized filter.
func MetaFor(f Filter, total int) Meta {
	n := f.Normalized()
	return Meta{Page: n.Page, Limit: n.Limit, Total: total}
}
