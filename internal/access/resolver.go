package access

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Subject is the directory record the resolver works from: the caller's role
// and tenancy assignment as stored, before any per-request targeting.
type Subject struct {
	UserID          string
	Role            string
	CompanyID       string
	SystemEditionID string
	Status          string
}

// DirectoryStore looks up the assignment for an authenticated user.
type DirectoryStore interface {
	Subject(ctx context.Context, userID string) (Subject, error)
}

// Resolver derives the per-request PermissionContext from the directory.
type Resolver struct {
	store DirectoryStore
}

func NewResolver(store DirectoryStore) (*Resolver, error) {
	if store == nil {
		return nil, errors.New("directory store is required")
	}
	return &Resolver{store: store}, nil
}

// Resolve builds the PermissionContext for the authenticated user. It fails
// when the user's role requires a scope identifier that is not assigned,
// e.g. a company_admin with no company.
func (r *Resolver) Resolve(ctx context.Context, userID string) (PermissionContext, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return PermissionContext{}, fmt.Errorf("%w: empty user id", ErrNotFound)
	}
	subject, err := r.store.Subject(ctx, userID)
	if err != nil {
		return PermissionContext{}, err
	}
	return ResolveSubject(subject)
}

// ResolveSubject validates a directory record against the role table and
// produces the request-scoped context.
func ResolveSubject(subject Subject) (PermissionContext, error) {
	role, ok := ParseRole(subject.Role)
	if !ok {
		return PermissionContext{}, fmt.Errorf("%w: %q", ErrUnknownRole, subject.Role)
	}
	if subject.Status != "" && subject.Status != "active" {
		return PermissionContext{}, ErrSubjectDisabled
	}

	pc := PermissionContext{
		UserID:          subject.UserID,
		Role:            role,
		CompanyID:       strings.TrimSpace(subject.CompanyID),
		SystemEditionID: strings.TrimSpace(subject.SystemEditionID),
	}

	def := definitions[role]
	switch def.Scope {
	case ScopeEdition:
		if pc.SystemEditionID == "" {
			return PermissionContext{}, fmt.Errorf("%w: %s has no system edition", ErrScopeUnresolved, role)
		}
	case ScopeCompany:
		if pc.CompanyID == "" {
			return PermissionContext{}, fmt.Errorf("%w: %s has no company", ErrScopeUnresolved, role)
		}
		if pc.SystemEditionID == "" {
			return PermissionContext{}, fmt.Errorf("%w: %s has no system edition", ErrScopeUnresolved, role)
		}
	case ScopeSelf:
		if pc.SystemEditionID == "" {
			return PermissionContext{}, fmt.Errorf("%w: user has no system edition", ErrScopeUnresolved)
		}
	}
	return pc, nil
}
