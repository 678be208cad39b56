package httpapi

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"scanid.app/internal/tags"
)

func (c *apiClient) seedTag(editionID, name string, sortOrder int) tags.Tag {
	c.t.Helper()
	tag, err := c.tags.Create(context.Background(), tags.CreateInput{
		SystemEditionID: editionID,
		Name:            name,
		Type:            "document",
		SortOrder:       sortOrder,
	})
	if err != nil {
		c.t.Fatalf("seed tag %s: %v", name, err)
	}
	return tag
}

func TestTagCreateRequiresManagePermission(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser("edition_admin", "e1", "", "ea@scanid.test")
	api.seedUser("company_admin", "e1", "c1", "ca@scanid.test")

	body := map[string]any{"name": "Invoices", "type": "document"}

	token := api.login("ca@scanid.test")
	resp := api.do(http.MethodPost, "/v1/tags", body, bearer(token))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("company admin should not create tags, got %d", resp.StatusCode)
	}

	token = api.login("ea@scanid.test")
	resp = api.do(http.MethodPost, "/v1/tags", body, bearer(token))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("edition admin create failed: %d", resp.StatusCode)
	}
	tag := decodeData[tags.Tag](t, resp)
	if tag.SystemEditionID != "e1" {
		t.Fatalf("tag not pinned to caller edition: %s", tag.SystemEditionID)
	}
	if !tag.IsActive {
		t.Fatalf("new tag should be active")
	}
}

func TestTagEditionIsolation(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser("edition_admin", "e1", "", "ea@scanid.test")
	foreign := api.seedTag("e2", "Foreign", 0)

	token := api.login("ea@scanid.test")

	resp := api.get("/v1/tags/"+foreign.ID, nil, bearer(token))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 reading another edition's tag, got %d", resp.StatusCode)
	}

	resp = api.do(http.MethodDelete, "/v1/tags/"+foreign.ID, nil, bearer(token))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 deleting another edition's tag, got %d", resp.StatusCode)
	}
}

func TestTagReorder(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser("edition_admin", "e1", "", "ea@scanid.test")
	first := api.seedTag("e1", "Alpha", 0)
	second := api.seedTag("e1", "Beta", 1)
	token := api.login("ea@scanid.test")

	resp := api.do(http.MethodPut, "/v1/tags/order", map[string]any{
		"updates": []map[string]any{
			{"id": first.ID, "sort_order": 5},
			{"id": second.ID, "sort_order": 2},
		},
	}, bearer(token))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reorder failed: %d", resp.StatusCode)
	}

	resp = api.get("/v1/tags/"+first.ID, nil, bearer(token))
	moved := decodeData[tags.Tag](t, resp)
	if moved.SortOrder != 5 {
		t.Fatalf("sort order not applied: %d", moved.SortOrder)
	}
}

func TestTagMergeSoftDeletesSources(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser("edition_admin", "e1", "", "ea@scanid.test")
	target := api.seedTag("e1", "Keep", 0)
	source := api.seedTag("e1", "Fold", 1)
	token := api.login("ea@scanid.test")

	resp := api.do(http.MethodPost, "/v1/tags/merge", map[string]any{
		"source_tag_ids": []string{source.ID},
		"target_tag_id":  target.ID,
	}, bearer(token))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("merge failed: %d", resp.StatusCode)
	}
	merged := decodeData[tags.Tag](t, resp)
	if merged.ID != target.ID {
		t.Fatalf("merge returned wrong tag: %s", merged.ID)
	}

	resp = api.get("/v1/tags/"+source.ID, nil, bearer(token))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("merged source should be gone, got %d", resp.StatusCode)
	}
}

func TestTagStats(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser("edition_admin", "e1", "", "ea@scanid.test")
	api.seedTag("e1", "One", 0)
	api.seedTag("e1", "Two", 1)
	api.seedTag("e2", "Elsewhere", 0)
	token := api.login("ea@scanid.test")

	resp := api.get("/v1/tags/stats", nil, bearer(token))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats failed: %d", resp.StatusCode)
	}
	stats := decodeData[tags.Stats](t, resp)
	if stats.Total != 2 {
		t.Fatalf("stats crossed edition boundary: %+v", stats)
	}
}

func TestTagListFiltersByType(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser("edition_admin", "e1", "", "ea@scanid.test")
	api.seedTag("e1", "Doc", 0)
	if _, err := api.tags.Create(context.Background(), tags.CreateInput{
		SystemEditionID: "e1",
		Name:            "Note",
		Type:            "note",
	}); err != nil {
		t.Fatalf("seed note tag: %v", err)
	}
	token := api.login("ea@scanid.test")

	resp := api.get("/v1/tags", url.Values{"type": {"note"}}, bearer(token))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list failed: %d", resp.StatusCode)
	}
	payload := decodeData[struct {
		Items []tags.Tag `json:"items"`
	}](t, resp)
	if len(payload.Items) != 1 || payload.Items[0].Type != tags.TypeNote {
		t.Fatalf("type filter not applied: %+v", payload.Items)
	}

	resp = api.get("/v1/tags", url.Values{"type": {"bogus"}}, bearer(token))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown type, got %d", resp.StatusCode)
	}
}
