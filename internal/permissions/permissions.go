// Package permissions defines the organization role model and the static
// role-to-permission table. All functions are total: an unknown or empty
// role degrades to the most restrictive answer, never an error.
package permissions

// Role is a user's membership level within an organization.
type Role string

const (
	RoleOrgAdmin     Role = "org_admin"
	RoleEventManager Role = "event_manager"
	RoleVendor       Role = "vendor"
	RolePartner      Role = "partner"
	RoleVolunteer    Role = "volunteer"
)

// Permission is a capability of the form "<resource>:<action>".
type Permission string

const (
	PermOrgView    Permission = "org:view"
	PermOrgEdit    Permission = "org:edit"
	PermOrgArchive Permission = "org:archive"

	PermEventView         Permission = "event:view"
	PermEventCreate       Permission = "event:create"
	PermEventEdit         Permission = "event:edit"
	PermEventDelete       Permission = "event:delete"
	PermEventChangeStatus Permission = "event:change_status"

	PermMilestoneView     Permission = "milestone:view"
	PermMilestoneCreate   Permission = "milestone:create"
	PermMilestoneEdit     Permission = "milestone:edit"
	PermMilestoneEditOwn  Permission = "milestone:edit_own"
	PermMilestoneDelete   Permission = "milestone:delete"
	PermMilestoneAssign   Permission = "milestone:assign"
	PermMilestoneComplete Permission = "milestone:complete"

	PermTemplateView    Permission = "template:view"
	PermTemplateCreate  Permission = "template:create"
	PermTemplateEdit    Permission = "template:edit"
	PermTemplateDelete  Permission = "template:delete"
	PermTemplateVersion Permission = "template:version"

	PermTeamView        Permission = "team:view"
	PermTeamInvite      Permission = "team:invite"
	PermTeamRemove      Permission = "team:remove"
	PermTeamChangeRoles Permission = "team:change_roles"
)

// rolePermissions is the complete role-to-permission table. Built once at
// init, never mutated. Every role carries the five *:view baselines.
var rolePermissions = map[Role]map[Permission]struct{}{
	RoleOrgAdmin: permSet(
		PermOrgView, PermOrgEdit, PermOrgArchive,
		PermEventView, PermEventCreate, PermEventEdit, PermEventDelete, PermEventChangeStatus,
		PermMilestoneView, PermMilestoneCreate, PermMilestoneEdit, PermMilestoneEditOwn,
		PermMilestoneDelete, PermMilestoneAssign, PermMilestoneComplete,
		PermTemplateView, PermTemplateCreate, PermTemplateEdit, PermTemplateDelete, PermTemplateVersion,
		PermTeamView, PermTeamInvite, PermTeamRemove, PermTeamChangeRoles,
	),
	RoleEventManager: permSet(
		PermOrgView,
		PermEventView, PermEventCreate, PermEventEdit, PermEventDelete, PermEventChangeStatus,
		PermMilestoneView, PermMilestoneCreate, PermMilestoneEdit, PermMilestoneEditOwn,
		PermMilestoneDelete, PermMilestoneAssign, PermMilestoneComplete,
		PermTemplateView, PermTemplateCreate, PermTemplateEdit, PermTemplateDelete, PermTemplateVersion,
		PermTeamView, PermTeamInvite,
	),
	RoleVendor: permSet(
		PermOrgView, PermEventView, PermMilestoneView, PermTemplateView, PermTeamView,
		PermMilestoneEditOwn, PermMilestoneComplete,
	),
	RolePartner: permSet(
		PermOrgView, PermEventView, PermMilestoneView, PermTemplateView, PermTeamView,
		PermMilestoneCreate, PermMilestoneEditOwn, PermMilestoneComplete,
	),
	RoleVolunteer: permSet(
		PermOrgView, PermEventView, PermMilestoneView, PermTemplateView, PermTeamView,
		PermMilestoneComplete,
	),
}

// roleRank orders roles by seniority, 1 = most senior. Used by
// AssignableRoles and AllRolesBySortOrder.
var roleRank = map[Role]int{
	RoleOrgAdmin:     1,
	RoleEventManager: 2,
	RoleVendor:       3,
	RolePartner:      4,
	RoleVolunteer:    5,
}

func permSet(perms ...Permission) map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// PermissionsFor returns the permission set for a role. Unknown roles get
// an empty set.
func PermissionsFor(role Role) []Permission {
	set, ok := rolePermissions[role]
	if !ok {
		return nil
	}
	out := make([]Permission, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	return out
}

// Has reports whether the role holds the permission. An empty or unknown
// role never does.
func Has(role Role, perm Permission) bool {
	set, ok := rolePermissions[role]
	if !ok {
		return false
	}
	_, ok = set[perm]
	return ok
}

// HasAny reports whether the role holds at least one of the permissions.
// An empty permission list is vacuously false.
func HasAny(role Role, perms ...Permission) bool {
	for _, p := range perms {
		if Has(role, p) {
			return true
		}
	}
	return false
}

// HasAll reports whether the role holds every permission. An empty
// permission list is vacuously true, even for an unknown role. Note the
// deliberate asymmetry with HasAny: both follow set-theoretic convention.
func HasAll(role Role, perms ...Permission) bool {
	for _, p := range perms {
		if !Has(role, p) {
			return false
		}
	}
	return true
}

// CanManageTeam reports whether the role can invite, remove, or re-role
// members.
func CanManageTeam(role Role) bool {
	return HasAny(role, PermTeamInvite, PermTeamRemove, PermTeamChangeRoles)
}

// CanInviteTeam reports whether the role can invite members.
func CanInviteTeam(role Role) bool {
	return Has(role, PermTeamInvite)
}

// CanManageOrg reports whether the role can edit or archive the
// organization.
func CanManageOrg(role Role) bool {
	return HasAny(role, PermOrgEdit, PermOrgArchive)
}

// CanManageEvents reports whether the role can create, edit, or delete
// events.
func CanManageEvents(role Role) bool {
	return HasAny(role, PermEventCreate, PermEventEdit, PermEventDelete)
}

// IsAdminRole reports whether the role is one of the two managing roles.
func IsAdminRole(role Role) bool {
	return role == RoleOrgAdmin || role == RoleEventManager
}

// AssignableRoles returns the roles this role may assign to others, in
// seniority order. A role can never assign a role ranked equal to or above
// itself, so org_admin is never assignable and non-admin roles assign
// nothing.
func AssignableRoles(role Role) []Role {
	rank, ok := roleRank[role]
	if !ok || !CanManageTeam(role) {
		return nil
	}
	var out []Role
	for _, r := range AllRolesBySortOrder() {
		if roleRank[r] > rank {
			out = append(out, r)
		}
	}
	return out
}

// AllRolesBySortOrder returns every role, most senior first.
func AllRolesBySortOrder() []Role {
	return []Role{RoleOrgAdmin, RoleEventManager, RoleVendor, RolePartner, RoleVolunteer}
}

// Valid reports whether the role is one of the five defined roles.
func Valid(role Role) bool {
	_, ok := rolePermissions[role]
	return ok
}

// Parse converts a raw string into a Role, reporting whether it is valid.
func Parse(s string) (Role, bool) {
	r := Role(s)
	return r, Valid(r)
}
