package tags

import "scanid.app/internal/access"

// Policy predicates for the tag module. These are pure functions over the
// resolved PermissionContext, layered on top of the route-level role gate.
// Note the asymmetry with other modules, which rely on the role gate alone:
// the tag routes are the only ones that re-check resolved scope here. That
// mirrors the platform's existing behavior and is intentional.

// EditionFor returns the edition a tag operation applies to: the caller's
// own edition when scoped, otherwise an explicitly targeted one.
func EditionFor(pc access.PermissionContext) string {
	if pc.SystemEditionID != "" {
		return pc.SystemEditionID
	}
	return pc.TargetSystemEditionID
}

// CanReadTags requires the read permission and a resolved edition. A caller
// whose edition could not be resolved cannot read tags regardless of role.
func CanReadTags(pc access.PermissionContext) bool {
	return pc.HasPermission(access.PermReadTags) && EditionFor(pc) != ""
}

func canMutateTags(pc access.PermissionContext) bool {
	return pc.HasPermission(access.PermManageTags) && EditionFor(pc) != ""
}

// CanCreateTag limits creation to roles holding manage:tags, which the
// static table grants to super_admin and edition_admin only.
func CanCreateTag(pc access.PermissionContext) bool { return canMutateTags(pc) }

// CanUpdateTag mirrors CanCreateTag.
func CanUpdateTag(pc access.PermissionContext) bool { return canMutateTags(pc) }

// CanDeleteTag mirrors CanCreateTag.
func CanDeleteTag(pc access.PermissionContext) bool { return canMutateTags(pc) }

// CanManageTagOrder guards the batch reorder and merge operations.
func CanManageTagOrder(pc access.PermissionContext) bool { return canMutateTags(pc) }
