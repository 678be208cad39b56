package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                              "/",
		"/metrics":                      "/metrics",
		"/v1/users/abc":                 "/v1/users/:id",
		"/v1/companies/abc":             "/v1/companies/:id",
		"/v1/companies/abc/pin-config":  "/v1/companies/:id/pin-config",
		"/v1/tags/abc":                  "/v1/tags/:id",
		"/v1/tags/order":                "/v1/tags/order",
		"/v1/tags/merge":                "/v1/tags/merge",
		"/v1/tags/stats":                "/v1/tags/stats",
		"/v1/delegate-access/invite":    "/v1/delegate-access/invite",
		"/v1/delegate-access/abc":       "/v1/delegate-access/:id",
		"/v1/audit-logs":                "/v1/audit-logs",
		"/v1/audit-logs?limit=10":       "/v1/audit-logs",
		"/v1/super-admin/audit-feed":    "/v1/super-admin/audit-feed",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
