package delegates

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestInviteAndAccept(t *testing.T) {
	svc, err := NewService(NewInMemory())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	grant, token, err := svc.Invite(ctx, InviteInput{
		SystemEditionID: "e1",
		CompanyID:       "c1",
		Email:           "  Advisor@Firm.COM ",
		InvitedByUserID: "admin-1",
	})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if grant.Status != StatusPending {
		t.Fatalf("expected pending grant, got %s", grant.Status)
	}
	if grant.Email != "advisor@firm.com" {
		t.Fatalf("email not normalized: %s", grant.Email)
	}
	if !strings.HasPrefix(token, grant.ID+".") {
		t.Fatalf("token must embed the grant id")
	}
	if grant.TokenHash == "" || strings.Contains(token, grant.TokenHash) {
		t.Fatalf("plaintext token must not expose the stored hash")
	}

	accepted, err := svc.Accept(ctx, token)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != StatusAccepted || accepted.AcceptedAt == nil {
		t.Fatalf("grant not accepted: %+v", accepted)
	}

	// Second redemption must fail: the invite is single-use.
	if _, err := svc.Accept(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected single-use token, got %v", err)
	}
}

func TestAcceptRejectsTamperedToken(t *testing.T) {
	svc, _ := NewService(NewInMemory())
	ctx := context.Background()

	grant, token, err := svc.Invite(ctx, InviteInput{SystemEditionID: "e1", CompanyID: "c1", Email: "a@b.c", InvitedByUserID: "u1"})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	if _, err := svc.Accept(ctx, grant.ID+".wrong-secret"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
	if _, err := svc.Accept(ctx, "no-separator"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected malformed token error, got %v", err)
	}

	if _, err := svc.Accept(ctx, token); err != nil {
		t.Fatalf("legitimate token rejected: %v", err)
	}
}

func TestAcceptExpiredInvite(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, _ := NewService(NewInMemory(),
		WithInviteTTL(time.Hour),
		WithClock(func() time.Time { return current }),
	)
	ctx := context.Background()

	_, token, err := svc.Invite(ctx, InviteInput{SystemEditionID: "e1", CompanyID: "c1", Email: "a@b.c", InvitedByUserID: "u1"})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	current = current.Add(2 * time.Hour)
	if _, err := svc.Accept(ctx, token); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestRevoke(t *testing.T) {
	svc, _ := NewService(NewInMemory())
	ctx := context.Background()

	grant, token, _ := svc.Invite(ctx, InviteInput{SystemEditionID: "e1", CompanyID: "c1", Email: "a@b.c", InvitedByUserID: "u1"})

	revoked, err := svc.Revoke(ctx, grant.ID)
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked.Status != StatusRevoked {
		t.Fatalf("expected revoked, got %s", revoked.Status)
	}
	if _, err := svc.Accept(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("revoked invite redeemed: %v", err)
	}
}

func TestListScoping(t *testing.T) {
	svc, _ := NewService(NewInMemory())
	ctx := context.Background()

	svc.Invite(ctx, InviteInput{SystemEditionID: "e1", CompanyID: "c1", Email: "one@x.y", InvitedByUserID: "u1"})
	svc.Invite(ctx, InviteInput{SystemEditionID: "e1", CompanyID: "c2", Email: "two@x.y", InvitedByUserID: "u1"})
	svc.Invite(ctx, InviteInput{SystemEditionID: "e2", CompanyID: "c3", Email: "three@x.y", InvitedByUserID: "u1"})

	_, total, err := svc.List(ctx, ListQuery{SystemEditionID: "e1"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 grants in e1, got %d", total)
	}

	scoped, total, err := svc.List(ctx, ListQuery{CompanyID: "c2"})
	if err != nil {
		t.Fatalf("list company: %v", err)
	}
	if total != 1 || scoped[0].Email != "two@x.y" {
		t.Fatalf("company scoping failed: %+v", scoped)
	}
}
