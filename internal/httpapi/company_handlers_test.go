package httpapi

import (
	"context"
	"net/http"
	"testing"

	"scanid.app/internal/companies"
)

func (c *apiClient) seedCompany(editionID, name string) companies.Company {
	c.t.Helper()
	company, err := c.companies.Create(context.Background(), editionID, name)
	if err != nil {
		c.t.Fatalf("seed company %s: %v", name, err)
	}
	return company
}

func TestCompanyCreatePinsEdition(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser("edition_admin", "e1", "", "ea@scanid.test")
	token := api.login("ea@scanid.test")

	resp := api.do(http.MethodPost, "/v1/companies", map[string]any{
		"system_edition_id": "e9",
		"name":              "Acme GmbH",
	}, bearer(token))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create company: expected 201, got %d", resp.StatusCode)
	}
	company := decodeData[companies.Company](t, resp)
	if company.SystemEditionID != "e1" {
		t.Fatalf("edition admin must not create outside own edition: %s", company.SystemEditionID)
	}
	if company.PinOptions.Documents || company.PinSettings.RequireToView {
		t.Fatalf("new company should start with PIN toggles off: %+v", company)
	}
}

func TestCompanyEditionIsolation(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser("edition_admin", "e1", "", "ea@scanid.test")
	foreign := api.seedCompany("e2", "Elsewhere Ltd")
	token := api.login("ea@scanid.test")

	resp := api.get("/v1/companies/"+foreign.ID, nil, bearer(token))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign company, got %d", resp.StatusCode)
	}
}

func TestCompanyPinConfigureAndVerify(t *testing.T) {
	api := newTestAPI(t)
	company := api.seedCompany("e1", "Acme GmbH")
	api.seedUser("company_admin", "e1", company.ID, "ca@scanid.test")
	api.seedUser("user", "e1", "", "u@scanid.test")
	token := api.login("ca@scanid.test")

	pin := "4711"
	resp := api.do(http.MethodPut, "/v1/companies/"+company.ID+"/pin-config", map[string]any{
		"master_pin":  pin,
		"pin_options": map[string]any{"documents": true},
	}, bearer(token))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pin-config: expected 200, got %d", resp.StatusCode)
	}
	configured := decodeData[companies.Company](t, resp)
	if !configured.PinOptions.Documents {
		t.Fatalf("pin options not applied: %+v", configured.PinOptions)
	}

	resp = api.do(http.MethodPost, "/v1/companies/"+company.ID+"/verify-pin", map[string]any{
		"pin": pin,
	}, bearer(token))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify-pin with correct pin: expected 200, got %d", resp.StatusCode)
	}

	resp = api.do(http.MethodPost, "/v1/companies/"+company.ID+"/verify-pin", map[string]any{
		"pin": "0000",
	}, bearer(token))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("verify-pin with wrong pin: expected 403, got %d", resp.StatusCode)
	}

	// A plain user outside the company cannot even attempt verification.
	token = api.login("u@scanid.test")
	resp = api.do(http.MethodPost, "/v1/companies/"+company.ID+"/verify-pin", map[string]any{
		"pin": pin,
	}, bearer(token))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("outsider verify-pin: expected 403, got %d", resp.StatusCode)
	}
}

func TestCompanyListScopedForCompanyAdmin(t *testing.T) {
	api := newTestAPI(t)
	mine := api.seedCompany("e1", "Mine")
	api.seedCompany("e1", "Sibling")
	api.seedUser("company_admin", "e1", mine.ID, "ca@scanid.test")
	token := api.login("ca@scanid.test")

	resp := api.get("/v1/companies", nil, bearer(token))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list companies: expected 200, got %d", resp.StatusCode)
	}
	payload := decodeData[struct {
		Items []companies.Company `json:"items"`
	}](t, resp)
	if len(payload.Items) != 1 || payload.Items[0].ID != mine.ID {
		t.Fatalf("company admin should only see own company: %+v", payload.Items)
	}
}
