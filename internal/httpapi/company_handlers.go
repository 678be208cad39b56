package httpapi

import (
	"net/http"
	"strings"

	"scanid.app/internal/access"
	"scanid.app/internal/audit"
	"scanid.app/internal/companies"
)

type createCompanyRequest struct {
	SystemEditionID string `json:"system_edition_id"`
	Name            string `json:"name"`
}

type updateCompanyRequest struct {
	Name *string `json:"name"`
}

type pinConfigRequest struct {
	MasterPin   *string                `json:"master_pin"`
	PinOptions  *companies.PinOptions  `json:"pin_options"`
	PinSettings *companies.PinSettings `json:"pin_settings"`
}

type verifyPinRequest struct {
	Pin string `json:"pin"`
}

func (a *API) handleCompaniesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listCompanies(w, r)
	case http.MethodPost:
		a.createCompany(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleCompanyResource(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/companies/"), "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	id := parts[0]

	if len(parts) == 2 {
		switch parts[1] {
		case "pin-config":
			a.configurePin(w, r, id)
		case "verify-pin":
			a.verifyPin(w, r, id)
		default:
			writeError(w, r, http.StatusNotFound, "resource not found")
		}
		return
	}
	if len(parts) != 1 {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getCompany(w, r, id)
	case http.MethodPut:
		a.updateCompany(w, r, id)
	case http.MethodDelete:
		a.deleteCompany(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) listCompanies(w http.ResponseWriter, r *http.Request) {
	pc, ok := a.requireRoles(w, r, access.RoleSuperAdmin, access.RoleEditionAdmin, access.RoleCompanyAdmin)
	if !ok {
		return
	}
	filter, err := parseListFilter(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	q := companies.ListQuery{Filter: filter}
	if pc.Role == access.RoleSuperAdmin {
		q.SystemEditionID = strings.TrimSpace(r.URL.Query().Get("system_edition_id"))
	} else {
		q.SystemEditionID = pc.SystemEditionID
	}

	items, total, err := a.companies.List(r.Context(), q)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if pc.Role == access.RoleCompanyAdmin {
		var own []companies.Company
		for _, c := range items {
			if c.ID == pc.CompanyID {
				own = append(own, c)
			}
		}
		items = own
		total = len(own)
	}
	writeData(w, r, http.StatusOK, listPayload{Items: items, Meta: metaFor(filter, total)})
}

func (a *API) createCompany(w http.ResponseWriter, r *http.Request) {
	pc, ok := a.requireRoles(w, r, access.RoleSuperAdmin, access.RoleEditionAdmin)
	if !ok {
		return
	}
	if !a.requirePermission(w, r, pc, access.PermCreateCompany) {
		return
	}
	var req createCompanyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	editionID := req.SystemEditionID
	if pc.Role != access.RoleSuperAdmin {
		editionID = pc.SystemEditionID
	}

	company, err := a.companies.Create(r.Context(), editionID, req.Name)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	a.record(r, pc, "create", "companies", "created company "+company.Name, audit.Entry{
		SystemEditionID: company.SystemEditionID,
		CompanyID:       company.ID,
	})
	writeData(w, r, http.StatusCreated, company)
}

func (a *API) getCompany(w http.ResponseWriter, r *http.Request, id string) {
	pc, ok := access.PermissionsFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	company, err := a.companies.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if !canAccessCompany(pc, company) {
		writeError(w, r, http.StatusForbidden, "insufficient role")
		return
	}
	writeData(w, r, http.StatusOK, company)
}

func (a *API) updateCompany(w http.ResponseWriter, r *http.Request, id string) {
	pc, ok := a.requireRoles(w, r, access.RoleSuperAdmin, access.RoleEditionAdmin, access.RoleCompanyAdmin)
	if !ok {
		return
	}
	existing, err := a.companies.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if !canAccessCompany(pc, existing) {
		writeError(w, r, http.StatusForbidden, "insufficient role")
		return
	}
	var req updateCompanyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	company, err := a.companies.Update(r.Context(), id, companies.Update{Name: req.Name})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	a.record(r, pc, "update", "companies", "updated company "+company.Name, audit.Entry{
		SystemEditionID: company.SystemEditionID,
		CompanyID:       company.ID,
	})
	writeData(w, r, http.StatusOK, company)
}

func (a *API) deleteCompany(w http.ResponseWriter, r *http.Request, id string) {
	pc, ok := a.requireRoles(w, r, access.RoleSuperAdmin, access.RoleEditionAdmin)
	if !ok {
		return
	}
	existing, err := a.companies.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if !canAccessCompany(pc, existing) {
		writeError(w, r, http.StatusForbidden, "insufficient role")
		return
	}
	if err := a.companies.Delete(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	a.record(r, pc, "delete", "companies", "deleted company "+existing.Name, audit.Entry{
		SystemEditionID: existing.SystemEditionID,
		CompanyID:       existing.ID,
	})
	writeMessage(w, r, http.StatusOK, "company deleted")
}

func (a *API) configurePin(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	pc, ok := a.requireRoles(w, r, access.RoleSuperAdmin, access.RoleEditionAdmin, access.RoleCompanyAdmin)
	if !ok {
		return
	}
	if !a.requirePermission(w, r, pc, access.PermManagePin) {
		return
	}
	existing, err := a.companies.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if !canAccessCompany(pc, existing) {
		writeError(w, r, http.StatusForbidden, "insufficient role")
		return
	}
	var req pinConfigRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	company, err := a.companies.ConfigurePin(r.Context(), id, companies.PinConfig{
		MasterPin:   req.MasterPin,
		PinOptions:  req.PinOptions,
		PinSettings: req.PinSettings,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	a.record(r, pc, "configure_pin", "companies", "updated PIN configuration", audit.Entry{
		SystemEditionID: company.SystemEditionID,
		CompanyID:       company.ID,
	})
	writeData(w, r, http.StatusOK, company)
}

func (a *API) verifyPin(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	pc, ok := access.PermissionsFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	existing, err := a.companies.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if !canAccessCompany(pc, existing) {
		writeError(w, r, http.StatusForbidden, "insufficient role")
		return
	}
	var req verifyPinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.companies.VerifyPin(r.Context(), id, req.Pin); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeMessage(w, r, http.StatusOK, "pin verified")
}

// canAccessCompany limits company operations to the caller's tenancy.
func canAccessCompany(pc access.PermissionContext, target companies.Company) bool {
	switch pc.Role {
	case access.RoleSuperAdmin:
		return true
	case access.RoleEditionAdmin:
		return target.SystemEditionID == pc.SystemEditionID
	default:
		return target.ID == pc.CompanyID
	}
}
