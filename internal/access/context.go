package access

import "context"

// PermissionContext carries everything downstream policy checks need about
// the caller. It is built fresh per request by the Resolver, travels through
// context.Context as a value and is discarded when the response is written.
type PermissionContext struct {
	UserID          string
	Role            Role
	CompanyID       string
	SystemEditionID string

	// Optional targets filled in by handlers that operate on another entity.
	TargetUserID          string
	TargetCompanyID       string
	TargetSystemEditionID string
}

// HasPermission checks the caller's role definition for the permission key.
func (pc PermissionContext) HasPermission(key string) bool {
	def, ok := definitions[pc.Role]
	if !ok {
		return false
	}
	return def.HasPermission(key)
}

// ScopedToEdition reports whether an edition was resolved for the caller.
func (pc PermissionContext) ScopedToEdition() bool {
	return pc.SystemEditionID != ""
}

// ScopedToCompany reports whether a company was resolved for the caller.
func (pc PermissionContext) ScopedToCompany() bool {
	return pc.CompanyID != ""
}

type permissionContextKey struct{}

// ContextWithPermissions attaches the resolved permission context.
func ContextWithPermissions(ctx context.Context, pc PermissionContext) context.Context {
	return context.WithValue(ctx, permissionContextKey{}, pc)
}

// PermissionsFromContext extracts the permission context set by the resolver.
func PermissionsFromContext(ctx context.Context) (PermissionContext, bool) {
	if ctx == nil {
		return PermissionContext{}, false
	}
	pc, ok := ctx.Value(permissionContextKey{}).(PermissionContext)
	return pc, ok
}
