package httpapi

import (
	"net/http"
	"testing"

	"scanid.app/internal/delegates"
)

func TestDelegateInviteAcceptRevokeFlow(t *testing.T) {
	api := newTestAPI(t)
	company := api.seedCompany("e1", "Acme GmbH")
	api.seedUser("company_admin", "e1", company.ID, "ca@scanid.test")
	token := api.login("ca@scanid.test")

	resp := api.do(http.MethodPost, "/v1/delegate-access/invite", map[string]any{
		"company_id": "ignored",
		"email":      "auditor@extern.test",
	}, bearer(token))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("invite: expected 201, got %d", resp.StatusCode)
	}
	invite := decodeData[inviteDelegateResponse](t, resp)
	if invite.Token == "" {
		t.Fatalf("invite token must be returned once at creation")
	}
	if invite.Grant.CompanyID != company.ID {
		t.Fatalf("company admin invite not pinned to own company: %s", invite.Grant.CompanyID)
	}
	if invite.Grant.Status != delegates.StatusPending {
		t.Fatalf("fresh invite should be pending: %s", invite.Grant.Status)
	}

	// Accept is public: the external delegate has no account yet.
	resp = api.do(http.MethodPost, "/v1/delegate-access/accept", map[string]any{
		"token": invite.Token,
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("accept: expected 200, got %d", resp.StatusCode)
	}
	accepted := decodeData[delegates.Access](t, resp)
	if accepted.Status != delegates.StatusAccepted || accepted.AcceptedAt == nil {
		t.Fatalf("accept not recorded: %+v", accepted)
	}

	// Accepting the same token twice must fail.
	resp = api.do(http.MethodPost, "/v1/delegate-access/accept", map[string]any{
		"token": invite.Token,
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		t.Fatalf("token replay must be rejected")
	}

	resp = api.do(http.MethodPost, "/v1/delegate-access/"+invite.Grant.ID+"/revoke", nil, bearer(token))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("revoke: expected 200, got %d", resp.StatusCode)
	}
	revoked := decodeData[delegates.Access](t, resp)
	if revoked.Status != delegates.StatusRevoked {
		t.Fatalf("revoke not applied: %s", revoked.Status)
	}
}

func TestDelegateAcceptRejectsUnknownToken(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(http.MethodPost, "/v1/delegate-access/accept", map[string]any{
		"token": "not-a-real-token",
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown token, got %d", resp.StatusCode)
	}
}

func TestDelegateTenancyOnList(t *testing.T) {
	api := newTestAPI(t)
	mine := api.seedCompany("e1", "Mine")
	other := api.seedCompany("e1", "Other")
	api.seedUser("company_admin", "e1", mine.ID, "ca@scanid.test")
	api.seedUser("edition_admin", "e1", "", "ea@scanid.test")

	eaToken := api.login("ea@scanid.test")
	for _, companyID := range []string{mine.ID, other.ID} {
		resp := api.do(http.MethodPost, "/v1/delegate-access/invite", map[string]any{
			"company_id": companyID,
			"email":      "d@extern.test",
		}, bearer(eaToken))
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("seed invite for %s: %d", companyID, resp.StatusCode)
		}
		resp.Body.Close()
	}

	caToken := api.login("ca@scanid.test")
	resp := api.get("/v1/delegate-access", nil, bearer(caToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", resp.StatusCode)
	}
	payload := decodeData[struct {
		Items []delegates.Access `json:"items"`
	}](t, resp)
	if len(payload.Items) != 1 || payload.Items[0].CompanyID != mine.ID {
		t.Fatalf("company admin should only see own grants: %+v", payload.Items)
	}
}
