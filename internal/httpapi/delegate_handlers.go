package httpapi

import (
	"net/http"
	"strings"

	"scanid.app/internal/access"
	"scanid.app/internal/audit"
	"scanid.app/internal/delegates"
)

type inviteDelegateRequest struct {
	SystemEditionID string `json:"system_edition_id"`
	CompanyID       string `json:"company_id"`
	Email           string `json:"email"`
}

type inviteDelegateResponse struct {
	Grant delegates.Access `json:"grant"`
	Token string           `json:"token"`
}

type acceptInviteRequest struct {
	Token string `json:"token"`
}

func (a *API) handleDelegatesCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	a.listDelegates(w, r)
}

func (a *API) handleDelegateResource(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/delegate-access/"), "/")
	switch path {
	case "":
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	case "invite":
		a.inviteDelegate(w, r)
		return
	case "accept":
		a.acceptInvite(w, r)
		return
	}
	parts := strings.Split(path, "/")
	if len(parts) == 2 && parts[1] == "revoke" {
		a.revokeDelegate(w, r, parts[0])
		return
	}
	if len(parts) != 1 {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	a.getDelegate(w, r, parts[0])
}

func (a *API) listDelegates(w http.ResponseWriter, r *http.Request) {
	pc, ok := a.requireRoles(w, r, access.RoleSuperAdmin, access.RoleEditionAdmin, access.RoleCompanyAdmin)
	if !ok {
		return
	}
	filter, err := parseListFilter(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	q := delegates.ListQuery{
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
		Filter: filter,
	}
	switch pc.Role {
	case access.RoleSuperAdmin:
		q.SystemEditionID = strings.TrimSpace(r.URL.Query().Get("system_edition_id"))
		q.CompanyID = strings.TrimSpace(r.URL.Query().Get("company_id"))
	case access.RoleEditionAdmin:
		q.SystemEditionID = pc.SystemEditionID
		q.CompanyID = strings.TrimSpace(r.URL.Query().Get("company_id"))
	case access.RoleCompanyAdmin:
		q.CompanyID = pc.CompanyID
	}

	items, total, err := a.delegates.List(r.Context(), q)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, listPayload{Items: items, Meta: metaFor(filter, total)})
}

func (a *API) getDelegate(w http.ResponseWriter, r *http.Request, id string) {
	pc, ok := a.requireRoles(w, r, access.RoleSuperAdmin, access.RoleEditionAdmin, access.RoleCompanyAdmin)
	if !ok {
		return
	}
	grant, err := a.delegates.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if !canAccessDelegate(pc, grant) {
		writeError(w, r, http.StatusForbidden, "insufficient role")
		return
	}
	writeData(w, r, http.StatusOK, grant)
}

func (a *API) inviteDelegate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	pc, ok := a.requireRoles(w, r, access.RoleSuperAdmin, access.RoleEditionAdmin, access.RoleCompanyAdmin)
	if !ok {
		return
	}
	if !a.requirePermission(w, r, pc, access.PermManageDelegates) {
		return
	}
	var req inviteDelegateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	in := delegates.InviteInput{
		SystemEditionID: req.SystemEditionID,
		CompanyID:       req.CompanyID,
		Email:           req.Email,
		InvitedByUserID: pc.UserID,
	}
	if pc.Role != access.RoleSuperAdmin {
		in.SystemEditionID = pc.SystemEditionID
	}
	if pc.Role == access.RoleCompanyAdmin {
		in.CompanyID = pc.CompanyID
	}

	grant, token, err := a.delegates.Invite(r.Context(), in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	a.record(r, pc, "invite", "delegates", "invited delegate "+grant.Email, audit.Entry{
		SystemEditionID: grant.SystemEditionID,
		CompanyID:       grant.CompanyID,
		Metadata:        map[string]string{"delegate_access_id": grant.ID},
	})
	writeData(w, r, http.StatusCreated, inviteDelegateResponse{Grant: grant, Token: token})
}

func (a *API) acceptInvite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req acceptInviteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	grant, err := a.delegates.Accept(r.Context(), req.Token)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, grant)
}

func (a *API) revokeDelegate(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	pc, ok := a.requireRoles(w, r, access.RoleSuperAdmin, access.RoleEditionAdmin, access.RoleCompanyAdmin)
	if !ok {
		return
	}
	if !a.requirePermission(w, r, pc, access.PermManageDelegates) {
		return
	}
	existing, err := a.delegates.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if !canAccessDelegate(pc, existing) {
		writeError(w, r, http.StatusForbidden, "insufficient role")
		return
	}
	grant, err := a.delegates.Revoke(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	a.record(r, pc, "revoke", "delegates", "revoked delegate access for "+grant.Email, audit.Entry{
		SystemEditionID: grant.SystemEditionID,
		CompanyID:       grant.CompanyID,
		Metadata:        map[string]string{"delegate_access_id": grant.ID},
	})
	writeData(w, r, http.StatusOK, grant)
}

func canAccessDelegate(pc access.PermissionContext, grant delegates.Access) bool {
	switch pc.Role {
	case access.RoleSuperAdmin:
		return true
	case access.RoleEditionAdmin:
		return grant.SystemEditionID == pc.SystemEditionID
	default:
		return grant.CompanyID == pc.CompanyID
	}
}
