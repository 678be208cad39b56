package access

import (
	"context"
	"errors"
	"testing"
)

type stubDirectory struct {
	subjects map[string]Subject
}

func (s *stubDirectory) Subject(_ context.Context, userID string) (Subject, error) {
	subject, ok := s.subjects[userID]
	if !ok {
		return Subject{}, ErrNotFound
	}
	return subject, nil
}

func TestResolveCompanyAdmin(t *testing.T) {
	resolver, err := NewResolver(&stubDirectory{subjects: map[string]Subject{
		"u1": {UserID: "u1", Role: "company_admin", CompanyID: "c1", SystemEditionID: "e1", Status: "active"},
	}})
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	pc, err := resolver.Resolve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if pc.Role != RoleCompanyAdmin || pc.CompanyID != "c1" || pc.SystemEditionID != "e1" {
		t.Fatalf("unexpected context: %+v", pc)
	}
}

func TestResolveCompanyAdminWithoutCompanyFails(t *testing.T) {
	resolver, _ := NewResolver(&stubDirectory{subjects: map[string]Subject{
		"u2": {UserID: "u2", Role: "company_admin", SystemEditionID: "e1", Status: "active"},
	}})

	_, err := resolver.Resolve(context.Background(), "u2")
	if !errors.Is(err, ErrScopeUnresolved) {
		t.Fatalf("expected ErrScopeUnresolved, got %v", err)
	}
}

func TestResolveEditionAdminWithoutEditionFails(t *testing.T) {
	_, err := ResolveSubject(Subject{UserID: "u3", Role: "edition_admin", Status: "active"})
	if !errors.Is(err, ErrScopeUnresolved) {
		t.Fatalf("expected ErrScopeUnresolved, got %v", err)
	}
}

func TestResolveSuperAdminNeedsNoScope(t *testing.T) {
	pc, err := ResolveSubject(Subject{UserID: "root", Role: "super_admin", Status: "active"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if pc.ScopedToEdition() || pc.ScopedToCompany() {
		t.Fatalf("super_admin should carry no tenant scope by default: %+v", pc)
	}
}

func TestResolveRejectsDisabledAndUnknown(t *testing.T) {
	if _, err := ResolveSubject(Subject{UserID: "u", Role: "user", SystemEditionID: "e1", Status: "disabled"}); !errors.Is(err, ErrSubjectDisabled) {
		t.Fatalf("expected ErrSubjectDisabled, got %v", err)
	}
	if _, err := ResolveSubject(Subject{UserID: "u", Role: "manager", Status: "active"}); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestContextRoundTrip(t *testing.T) {
	pc := PermissionContext{UserID: "u1", Role: RoleUser, SystemEditionID: "e1"}
	ctx := ContextWithPermissions(context.Background(), pc)
	got, ok := PermissionsFromContext(ctx)
	if !ok || got != pc {
		t.Fatalf("context round trip failed: %+v ok=%v", got, ok)
	}
	if _, ok := PermissionsFromContext(context.Background()); ok {
		t.Fatalf("empty context should not contain permissions")
	}
}
