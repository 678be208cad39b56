package tags

import (
	"testing"

	"scanid.app/internal/access"
)

func TestCanReadTagsRequiresResolvedEdition(t *testing.T) {
	// A company_admin whose edition could not be resolved must be denied
	// even though the role itself carries read:tags.
	unresolved := access.PermissionContext{UserID: "u1", Role: access.RoleCompanyAdmin}
	if CanReadTags(unresolved) {
		t.Fatalf("read allowed without a resolved edition")
	}

	resolved := access.PermissionContext{UserID: "u1", Role: access.RoleCompanyAdmin, CompanyID: "c1", SystemEditionID: "e1"}
	if !CanReadTags(resolved) {
		t.Fatalf("read denied despite resolved edition")
	}
}

func TestSuperAdminUsesTargetEdition(t *testing.T) {
	pc := access.PermissionContext{UserID: "root", Role: access.RoleSuperAdmin}
	if CanCreateTag(pc) {
		t.Fatalf("super_admin without a target edition should be denied")
	}
	pc.TargetSystemEditionID = "e1"
	if !CanCreateTag(pc) {
		t.Fatalf("super_admin with target edition denied")
	}
	if EditionFor(pc) != "e1" {
		t.Fatalf("unexpected edition: %s", EditionFor(pc))
	}
}

func TestMutationLimitedToAdminRoles(t *testing.T) {
	editionAdmin := access.PermissionContext{Role: access.RoleEditionAdmin, SystemEditionID: "e1"}
	if !CanCreateTag(editionAdmin) || !CanUpdateTag(editionAdmin) || !CanDeleteTag(editionAdmin) || !CanManageTagOrder(editionAdmin) {
		t.Fatalf("edition_admin must be able to mutate tags")
	}

	for _, role := range []access.Role{access.RoleCompanyAdmin, access.RoleUser, access.RoleDelegate} {
		pc := access.PermissionContext{Role: role, CompanyID: "c1", SystemEditionID: "e1"}
		if CanCreateTag(pc) || CanUpdateTag(pc) || CanDeleteTag(pc) || CanManageTagOrder(pc) {
			t.Fatalf("%s must not mutate tags", role)
		}
		if !CanReadTags(pc) {
			t.Fatalf("%s should still read tags", role)
		}
	}
}
