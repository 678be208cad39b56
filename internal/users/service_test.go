package users

import (
	"context"
	"errors"
	"testing"

	"scanid.app/internal/pagination"
)

func TestCreateValidation(t *testing.T) {
	svc, err := NewService(NewInMemory())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Email: "a@b.c", Role: "user", Password: "pw"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected edition requirement, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{SystemEditionID: "e1", Email: "not-an-email", Role: "user", Password: "pw"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected email validation, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{SystemEditionID: "e1", Email: "a@b.c", Role: "owner", Password: "pw"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected unknown role rejection, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{SystemEditionID: "e1", Email: "a@b.c", Role: "company_admin", Password: "pw"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("company_admin without company must fail, got %v", err)
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, _ := NewService(NewInMemory())
	ctx := context.Background()

	user, err := svc.Register(ctx, "e1", "", "  Admin@Example.COM ", "Ada", "Lovelace", "hunter22")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "admin@example.com" {
		t.Fatalf("email not normalized: %s", user.Email)
	}
	if user.Role != "user" || user.Status != StatusActive {
		t.Fatalf("unexpected defaults: %+v", user)
	}
	if user.PasswordHash == "hunter22" || user.PasswordHash == "" {
		t.Fatalf("password stored unhashed")
	}

	got, err := svc.Authenticate(ctx, "admin@example.com", "hunter22")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("unexpected account: %s", got.ID)
	}

	if _, err := svc.Authenticate(ctx, "admin@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ghost@example.com", "hunter22"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email must look like bad credentials, got %v", err)
	}
}

func TestAuthenticateDisabledAccount(t *testing.T) {
	svc, _ := NewService(NewInMemory())
	ctx := context.Background()

	user, err := svc.Register(ctx, "e1", "", "x@y.z", "X", "Y", "pw123456")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	disabled := StatusDisabled
	if _, err := svc.Update(ctx, user.ID, Update{Status: &disabled}); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "x@y.z", "pw123456"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("disabled account authenticated: %v", err)
	}
}

func TestListScopingAndPagination(t *testing.T) {
	svc, _ := NewService(NewInMemory())
	ctx := context.Background()

	seed := []struct{ edition, company, email string }{
		{"e1", "c1", "one@corp.io"},
		{"e1", "c2", "two@corp.io"},
		{"e2", "c3", "three@corp.io"},
	}
	for _, s := range seed {
		if _, err := svc.Register(ctx, s.edition, s.company, s.email, "F", "L", "pw123456"); err != nil {
			t.Fatalf("seed %s: %v", s.email, err)
		}
	}

	all, total, err := svc.List(ctx, ListQuery{SystemEditionID: "e1"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Fatalf("expected 2 users in e1, got total=%d len=%d", total, len(all))
	}

	scoped, total, err := svc.List(ctx, ListQuery{SystemEditionID: "e1", CompanyID: "c2"})
	if err != nil {
		t.Fatalf("list company: %v", err)
	}
	if total != 1 || scoped[0].Email != "two@corp.io" {
		t.Fatalf("company scoping failed: %+v", scoped)
	}

	found, total, err := svc.List(ctx, ListQuery{Filter: pagination.Filter{Search: "three"}})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 1 || found[0].Email != "three@corp.io" {
		t.Fatalf("search failed: %+v", found)
	}

	page2, total, err := svc.List(ctx, ListQuery{Filter: pagination.Filter{Page: 2, Limit: 2}})
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if total != 3 || len(page2) != 1 {
		t.Fatalf("pagination failed: total=%d len=%d", total, len(page2))
	}
}

func TestUpdateRejectsBadRole(t *testing.T) {
	svc, _ := NewService(NewInMemory())
	ctx := context.Background()
	user, _ := svc.Register(ctx, "e1", "", "r@r.r", "R", "R", "pw123456")

	bad := "warlord"
	if _, err := svc.Update(ctx, user.ID, Update{Role: &bad}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected role validation, got %v", err)
	}
}
