package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"scanid.app/internal/access"
)

func (a *API) handleDashboardMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	pc, ok := a.requireRoles(w, r, access.RoleSuperAdmin)
	if !ok {
		return
	}
	if !a.requirePermission(w, r, pc, access.PermReadDashboard) {
		return
	}
	metrics, err := a.dashboard.DashboardMetrics(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "metrics unavailable")
		return
	}
	writeData(w, r, http.StatusOK, metrics)
}

// handleAuditFeed streams audit events to super admins over Server-Sent
// Events.
func (a *API) handleAuditFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.requireRoles(w, r, access.RoleSuperAdmin); !ok {
		return
	}
	if a.stream == nil {
		writeError(w, r, http.StatusServiceUnavailable, "streaming disabled")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ch := a.stream.Subscribe(ctx)

	// Initial comment establishes the stream on the client side.
	_, _ = w.Write([]byte(": audit feed started\n\n"))
	flusher.Flush()

	for event := range ch {
		payload, err := json.Marshal(event)
		if err != nil {
			continue
		}
		_, _ = w.Write([]byte("data: "))
		_, _ = w.Write(payload)
		_, _ = w.Write([]byte("\n\n"))
		flusher.Flush()
	}
}
