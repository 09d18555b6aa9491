package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baselineViews = []Permission{
	PermOrgView, PermEventView, PermMilestoneView, PermTemplateView, PermTeamView,
}

func TestPermissionsFor_EveryRoleHasBaseline(t *testing.T) {
	for _, role := range AllRolesBySortOrder() {
		perms := PermissionsFor(role)
		require.NotEmpty(t, perms, "role %s", role)

		seen := make(map[Permission]int)
		for _, p := range perms {
			seen[p]++
		}
		for p, n := range seen {
			assert.Equal(t, 1, n, "role %s has duplicate permission %s", role, p)
		}
		for _, view := range baselineViews {
			assert.Contains(t, perms, view, "role %s missing baseline %s", role, view)
		}
	}
}

func TestPermissionsFor_UnknownRole(t *testing.T) {
	assert.Empty(t, PermissionsFor(Role("superuser")))
	assert.Empty(t, PermissionsFor(Role("")))
}

func TestHas_MatchesPermissionsFor(t *testing.T) {
	for _, role := range AllRolesBySortOrder() {
		set := make(map[Permission]struct{})
		for _, p := range PermissionsFor(role) {
			set[p] = struct{}{}
		}
		for _, p := range []Permission{
			PermOrgEdit, PermEventCreate, PermMilestoneEditOwn,
			PermTemplateVersion, PermTeamChangeRoles, PermMilestoneComplete,
		} {
			_, want := set[p]
			assert.Equal(t, want, Has(role, p), "role %s perm %s", role, p)
		}
	}
}

func TestHas_AbsentRole(t *testing.T) {
	assert.False(t, Has("", PermOrgView))
	assert.False(t, Has("nobody", PermOrgView))
}

func TestHasAnyHasAll_EmptyListAsymmetry(t *testing.T) {
	roles := append(AllRolesBySortOrder(), Role(""), Role("unknown"))
	for _, role := range roles {
		assert.False(t, HasAny(role), "HasAny with no permissions must be false for %q", role)
		assert.True(t, HasAll(role), "HasAll with no permissions must be true for %q", role)
	}
}

func TestHasAny(t *testing.T) {
	assert.True(t, HasAny(RoleVolunteer, PermOrgEdit, PermMilestoneComplete))
	assert.False(t, HasAny(RoleVolunteer, PermOrgEdit, PermTeamInvite))
	assert.False(t, HasAny("", PermOrgView))
}

func TestHasAll(t *testing.T) {
	assert.True(t, HasAll(RoleOrgAdmin, PermOrgEdit, PermOrgArchive, PermTeamChangeRoles))
	assert.False(t, HasAll(RoleEventManager, PermEventCreate, PermOrgEdit))
	assert.False(t, HasAll("", PermOrgView))
}

func TestCapabilityHelpers(t *testing.T) {
	tests := []struct {
		role         Role
		manageTeam   bool
		inviteTeam   bool
		manageOrg    bool
		manageEvents bool
		admin        bool
	}{
		{RoleOrgAdmin, true, true, true, true, true},
		{RoleEventManager, true, true, false, true, true},
		{RoleVendor, false, false, false, false, false},
		{RolePartner, false, false, false, false, false},
		{RoleVolunteer, false, false, false, false, false},
		{Role(""), false, false, false, false, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.manageTeam, CanManageTeam(tt.role), "CanManageTeam %q", tt.role)
		assert.Equal(t, tt.inviteTeam, CanInviteTeam(tt.role), "CanInviteTeam %q", tt.role)
		assert.Equal(t, tt.manageOrg, CanManageOrg(tt.role), "CanManageOrg %q", tt.role)
		assert.Equal(t, tt.manageEvents, CanManageEvents(tt.role), "CanManageEvents %q", tt.role)
		assert.Equal(t, tt.admin, IsAdminRole(tt.role), "IsAdminRole %q", tt.role)
	}
}

func TestAssignableRoles_NeverEqualOrSenior(t *testing.T) {
	assert.Equal(t,
		[]Role{RoleEventManager, RoleVendor, RolePartner, RoleVolunteer},
		AssignableRoles(RoleOrgAdmin))
	assert.Equal(t,
		[]Role{RoleVendor, RolePartner, RoleVolunteer},
		AssignableRoles(RoleEventManager))
	assert.Empty(t, AssignableRoles(RoleVendor))
	assert.Empty(t, AssignableRoles(RolePartner))
	assert.Empty(t, AssignableRoles(RoleVolunteer))
	assert.Empty(t, AssignableRoles(Role("")))

	assert.NotContains(t, AssignableRoles(RoleOrgAdmin), RoleOrgAdmin)
}

func TestAllRolesBySortOrder(t *testing.T) {
	assert.Equal(t,
		[]Role{RoleOrgAdmin, RoleEventManager, RoleVendor, RolePartner, RoleVolunteer},
		AllRolesBySortOrder())
}

func TestParse(t *testing.T) {
	r, ok := Parse("event_manager")
	require.True(t, ok)
	assert.Equal(t, RoleEventManager, r)

	_, ok = Parse("owner")
	assert.False(t, ok)
}
