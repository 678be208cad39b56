package access

// Permission keys use the action:resource form carried over from the
// platform's public API contract.
const (
	PermCreateUser = "create:user"
	PermReadUser   = "read:user"
	PermUpdateUser = "update:user"
	PermDeleteUser = "delete:user"

	PermCreateCompany = "create:company"
	PermReadCompany   = "read:company"
	PermUpdateCompany = "update:company"
	PermDeleteCompany = "delete:company"
	PermManagePin     = "manage:pin"

	PermReadTags   = "read:tags"
	PermManageTags = "manage:tags"

	PermReadDelegates   = "read:delegates"
	PermManageDelegates = "manage:delegates"

	PermReadAudit     = "read:audit"
	PermReadDashboard = "read:dashboard"

	PermManageEditions = "manage:editions"
)

func allPermissions() []string {
	return []string{
		PermCreateUser, PermReadUser, PermUpdateUser, PermDeleteUser,
		PermCreateCompany, PermReadCompany, PermUpdateCompany, PermDeleteCompany,
		PermManagePin,
		PermReadTags, PermManageTags,
		PermReadDelegates, PermManageDelegates,
		PermReadAudit, PermReadDashboard,
		PermManageEditions,
	}
}
