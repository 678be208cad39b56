package httpapi

import (
	"net/http"
	"strings"
	"time"

	"scanid.app/internal/access"
	"scanid.app/internal/audit"
	"scanid.app/internal/auth"
	"scanid.app/internal/users"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      users.User `json:"user"`
}

type registerRequest struct {
	SystemEditionID string `json:"system_edition_id"`
	CompanyID       string `json:"company_id"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Password        string `json:"password"`
}

type createUserRequest struct {
	SystemEditionID string `json:"system_edition_id"`
	CompanyID       string `json:"company_id"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Role            string `json:"role"`
	Password        string `json:"password"`
}

type updateUserRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role"`
	CompanyID *string `json:"company_id"`
	Password  *string `json:"password"`
	Status    *string `json:"status"`
}

func (a *API) handleUsersCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listUsers(w, r)
	case http.MethodPost:
		a.createUser(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/users/"), "/")
	switch path {
	case "":
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	case "login":
		a.login(w, r)
		return
	case "register":
		a.register(w, r)
		return
	}
	if strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getUser(w, r, path)
	case http.MethodPut:
		a.updateUser(w, r, path)
	case http.MethodDelete:
		a.deleteUser(w, r, path)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	user, err := a.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	token, err := auth.GenerateToken(user.ID, user.Role, user.SystemEditionID, user.CompanyID, a.tokenTTL)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "token generation failed")
		return
	}
	if a.recorder != nil {
		_ = a.recorder.Record(r.Context(), audit.Entry{
			UserID:          user.ID,
			Action:          "login",
			Module:          "users",
			SystemEditionID: user.SystemEditionID,
			CompanyID:       user.CompanyID,
			IPAddress:       clientIP(r),
			UserAgent:       r.UserAgent(),
		})
	}
	writeData(w, r, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(a.tokenTTL),
		User:      user,
	})
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	user, err := a.users.Register(r.Context(), req.SystemEditionID, req.CompanyID, req.Email, req.FirstName, req.LastName, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, user)
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	pc, ok := a.requireRoles(w, r, access.RoleSuperAdmin, access.RoleEditionAdmin, access.RoleCompanyAdmin)
	if !ok {
		return
	}
	filter, err := parseListFilter(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	q := users.ListQuery{Filter: filter}
	switch pc.Role {
	case access.RoleSuperAdmin:
		q.SystemEditionID = strings.TrimSpace(r.URL.Query().Get("system_edition_id"))
		q.CompanyID = strings.TrimSpace(r.URL.Query().Get("company_id"))
	case access.RoleEditionAdmin:
		q.SystemEditionID = pc.SystemEditionID
		q.CompanyID = strings.TrimSpace(r.URL.Query().Get("company_id"))
	case access.RoleCompanyAdmin:
		q.SystemEditionID = pc.SystemEditionID
		q.CompanyID = pc.CompanyID
	}

	items, total, err := a.users.List(r.Context(), q)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, listPayload{Items: items, Meta: metaFor(filter, total)})
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	pc, ok := a.requireRoles(w, r, access.RoleSuperAdmin, access.RoleEditionAdmin, access.RoleCompanyAdmin)
	if !ok {
		return
	}
	if !a.requirePermission(w, r, pc, access.PermCreateUser) {
		return
	}
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	// Unknown role strings fall through to the service's validation.
	if role, known := access.ParseRole(req.Role); known && !access.CanAssignRole(pc.Role, role) {
		writeError(w, r, http.StatusForbidden, "cannot assign role "+string(role))
		return
	}

	in := users.CreateInput{
		SystemEditionID: req.SystemEditionID,
		CompanyID:       req.CompanyID,
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Role:            req.Role,
		Password:        req.Password,
	}
	// Tenancy is pinned to the caller's own scope below super admin.
	if pc.Role != access.RoleSuperAdmin {
		in.SystemEditionID = pc.SystemEditionID
	}
	if pc.Role == access.RoleCompanyAdmin {
		in.CompanyID = pc.CompanyID
	}

	user, err := a.users.Create(r.Context(), in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	a.record(r, pc, "create", "users", "created user "+user.Email, audit.Entry{
		SystemEditionID: user.SystemEditionID,
		CompanyID:       user.CompanyID,
		Metadata:        map[string]string{"user_id": user.ID, "role": user.Role},
	})
	writeData(w, r, http.StatusCreated, user)
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request, id string) {
	pc, ok := access.PermissionsFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	user, err := a.users.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if !canAccessUser(pc, user) {
		writeError(w, r, http.StatusForbidden, "insufficient role")
		return
	}
	writeData(w, r, http.StatusOK, user)
}

func (a *API) updateUser(w http.ResponseWriter, r *http.Request, id string) {
	pc, ok := access.PermissionsFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	existing, err := a.users.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if !canAccessUser(pc, existing) {
		writeError(w, r, http.StatusForbidden, "insufficient role")
		return
	}

	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	isAdmin := pc.Role == access.RoleSuperAdmin || pc.Role == access.RoleEditionAdmin || pc.Role == access.RoleCompanyAdmin
	if !isAdmin && (req.Role != nil || req.Status != nil || req.CompanyID != nil) {
		writeError(w, r, http.StatusForbidden, "only administrators may change role, status or company")
		return
	}
	if req.Role != nil {
		// Role grants are capped at the caller's own rank, and nobody
		// rewrites their own role.
		if existing.ID == pc.UserID {
			writeError(w, r, http.StatusForbidden, "cannot change own role")
			return
		}
		if role, known := access.ParseRole(*req.Role); known && !access.CanAssignRole(pc.Role, role) {
			writeError(w, r, http.StatusForbidden, "cannot assign role "+string(role))
			return
		}
	}

	user, err := a.users.Update(r.Context(), id, users.Update{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		CompanyID: req.CompanyID,
		Password:  req.Password,
		Status:    req.Status,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	a.record(r, pc, "update", "users", "updated user "+user.Email, audit.Entry{
		SystemEditionID: user.SystemEditionID,
		CompanyID:       user.CompanyID,
		Metadata:        map[string]string{"user_id": user.ID},
	})
	writeData(w, r, http.StatusOK, user)
}

func (a *API) deleteUser(w http.ResponseWriter, r *http.Request, id string) {
	pc, ok := a.requireRoles(w, r, access.RoleSuperAdmin, access.RoleEditionAdmin, access.RoleCompanyAdmin)
	if !ok {
		return
	}
	existing, err := a.users.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if !canAccessUser(pc, existing) {
		writeError(w, r, http.StatusForbidden, "insufficient role")
		return
	}
	if err := a.users.Delete(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	a.record(r, pc, "delete", "users", "deleted user "+existing.Email, audit.Entry{
		SystemEditionID: existing.SystemEditionID,
		CompanyID:       existing.CompanyID,
		Metadata:        map[string]string{"user_id": existing.ID},
	})
	writeMessage(w, r, http.StatusOK, "user deleted")
}

// canAccessUser limits user reads and writes to the caller's tenancy:
// edition admins to their edition, company admins to their company, regular
// users and delegates to their own account.
func canAccessUser(pc access.PermissionContext, target users.User) bool {
	switch pc.Role {
	case access.RoleSuperAdmin:
		return true
	case access.RoleEditionAdmin:
		return target.SystemEditionID == pc.SystemEditionID
	case access.RoleCompanyAdmin:
		return target.CompanyID == pc.CompanyID
	default:
		return target.ID == pc.UserID
	}
}
