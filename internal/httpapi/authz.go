package httpapi

import (
	"net/http"

	"scanid.app/internal/access"
)

// requireRoles enforces the route-level role gate: the caller must hold one
// of the allowed roles. Returns the permission context on success.
func (a *API) requireRoles(w http.ResponseWriter, r *http.Request, allowed ...access.Role) (access.PermissionContext, bool) {
	pc, ok := access.PermissionsFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return access.PermissionContext{}, false
	}
	for _, role := range allowed {
		if pc.Role == role {
			return pc, true
		}
	}
	writeError(w, r, http.StatusForbidden, "insufficient role")
	return access.PermissionContext{}, false
}

// requirePermission checks the static role table for the permission key.
func (a *API) requirePermission(w http.ResponseWriter, r *http.Request, pc access.PermissionContext, key string) bool {
	if result := access.Check(pc.Role, key); !result.Granted {
		writeError(w, r, http.StatusForbidden, result.Reason)
		return false
	}
	return true
}
