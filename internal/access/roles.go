package access

import "strings"

// Role is one of the fixed platform roles. Roles are not user-definable.
type Role string

const (
	RoleSuperAdmin   Role = "super_admin"
	RoleEditionAdmin Role = "edition_admin"
	RoleCompanyAdmin Role = "company_admin"
	RoleUser         Role = "user"
	RoleDelegate     Role = "delegate"
)

// Scope is the breadth within which a role's permissions apply.
type Scope string

const (
	ScopeGlobal  Scope = "global"
	ScopeEdition Scope = "edition"
	ScopeCompany Scope = "company"
	ScopeSelf    Scope = "self"
)

// RoleDefinition binds a role name to its permission set and scope.
// Definitions are static: built once at init, immutable thereafter.
type RoleDefinition struct {
	Name        Role
	Description string
	Scope       Scope
	Permissions []string
}

// HasPermission reports whether the definition grants the permission key.
func (d RoleDefinition) HasPermission(key string) bool {
	for _, p := range d.Permissions {
		if p == key {
			return true
		}
	}
	return false
}

var definitions = map[Role]RoleDefinition{
	RoleSuperAdmin: {
		Name:        RoleSuperAdmin,
		Description: "Platform operator with unrestricted access across all system editions",
		Scope:       ScopeGlobal,
		Permissions: allPermissions(),
	},
	RoleEditionAdmin: {
		Name:        RoleEditionAdmin,
		Description: "Administers companies, users and tags within one system edition",
		Scope:       ScopeEdition,
		Permissions: []string{
			PermCreateUser, PermReadUser, PermUpdateUser, PermDeleteUser,
			PermCreateCompany, PermReadCompany, PermUpdateCompany, PermDeleteCompany,
			PermManagePin,
			PermReadTags, PermManageTags,
			PermReadDelegates, PermManageDelegates,
			PermReadAudit,
		},
	},
	RoleCompanyAdmin: {
		Name:        RoleCompanyAdmin,
		Description: "Administers one company: its users, PIN settings and delegates",
		Scope:       ScopeCompany,
		Permissions: []string{
			PermCreateUser, PermReadUser, PermUpdateUser, PermDeleteUser,
			PermReadCompany, PermUpdateCompany,
			PermManagePin,
			PermReadTags,
			PermReadDelegates, PermManageDelegates,
		},
	},
	RoleUser: {
		Name:        RoleUser,
		Description: "Regular member acting on their own account",
		Scope:       ScopeSelf,
		Permissions: []string{
			PermReadUser, PermUpdateUser,
			PermReadCompany,
			PermReadTags,
		},
	},
	RoleDelegate: {
		Name:        RoleDelegate,
		Description: "Limited administrative access granted on behalf of a company admin",
		Scope:       ScopeCompany,
		Permissions: []string{
			PermReadUser,
			PermReadCompany,
			PermReadTags,
			PermReadDelegates,
		},
	},
}

// ParseRole normalizes a raw role name and validates it against the table.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.TrimSpace(strings.ToLower(raw)))
	_, ok := definitions[role]
	return role, ok
}

// Definition returns the static definition for the role.
func Definition(role Role) (RoleDefinition, bool) {
	def, ok := definitions[role]
	if !ok {
		return RoleDefinition{}, false
	}
	out := def
	out.Permissions = make([]string, len(def.Permissions))
	copy(out.Permissions, def.Permissions)
	return out, true
}

// Roles lists every known role name.
func Roles() []Role {
	out := make([]Role, 0, len(definitions))
	for r := range definitions {
		out = append(out, r)
	}
	return out
}

// assignmentRank orders roles for grant decisions. user and delegate share
// the bottom rank: neither is above the other.
var assignmentRank = map[Role]int{
	RoleSuperAdmin:   3,
	RoleEditionAdmin: 2,
	RoleCompanyAdmin: 1,
	RoleUser:         0,
	RoleDelegate:     0,
}

// CanAssignRole reports whether a caller holding assigner may grant target
// to an account. Only administrative roles assign at all, nobody hands out a
// role above their own, and company admins only manage non-administrative
// members.
func CanAssignRole(assigner, target Role) bool {
	ar, ok := assignmentRank[assigner]
	if !ok || ar < assignmentRank[RoleCompanyAdmin] {
		return false
	}
	tr, ok := assignmentRank[target]
	if !ok {
		return false
	}
	if assigner == RoleCompanyAdmin {
		return tr < ar
	}
	return tr <= ar
}

// PermissionResult is the outcome of a permission check.
type PermissionResult struct {
	Granted bool   `json:"granted"`
	Reason  string `json:"reason,omitempty"`
}

// Check evaluates whether the role's static definition grants the permission.
func Check(role Role, permission string) PermissionResult {
	def, ok := definitions[role]
	if !ok {
		return PermissionResult{Granted: false, Reason: "unknown role " + string(role)}
	}
	if !def.HasPermission(permission) {
		return PermissionResult{Granted: false, Reason: string(role) + " lacks " + permission}
	}
	return PermissionResult{Granted: true, Reason: "granted by role " + string(role)}
}
