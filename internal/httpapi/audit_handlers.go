package httpapi

import (
	"net/http"
	"strings"

	"scanid.app/internal/access"
	"scanid.app/internal/audit"
)

// handleAuditLogs serves the audit trail. Reads are restricted to super and
// edition admins; edition admins only ever see their own edition.
func (a *API) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	pc, ok := a.requireRoles(w, r, access.RoleSuperAdmin, access.RoleEditionAdmin)
	if !ok {
		return
	}
	if !a.requirePermission(w, r, pc, access.PermReadAudit) {
		return
	}
	filter, err := parseListFilter(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	q := audit.ListQuery{
		CompanyID: strings.TrimSpace(r.URL.Query().Get("company_id")),
		Module:    strings.TrimSpace(r.URL.Query().Get("module")),
		Filter:    filter,
	}
	if pc.Role == access.RoleSuperAdmin {
		q.SystemEditionID = strings.TrimSpace(r.URL.Query().Get("system_edition_id"))
	} else {
		q.SystemEditionID = pc.SystemEditionID
	}

	items, total, err := a.recorder.List(r.Context(), q)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, listPayload{Items: items, Meta: metaFor(filter, total)})
}
