package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRolePermissionTable(t *testing.T) {
	// Everyone authenticated can learn and see courses.
	for _, role := range []Role{RoleSuperAdmin, RoleAdmin, RoleInstructor, RoleManager, RoleEmployee} {
		assert.True(t, RoleHasPermission(role, PermLearningAccess), "role %s", role)
		assert.True(t, RoleHasPermission(role, PermCoursesView), "role %s", role)
	}

	// Settings management is the one super-admin exclusive.
	assert.True(t, RoleHasPermission(RoleSuperAdmin, PermSettingsManage))
	for _, role := range []Role{RoleAdmin, RoleInstructor, RoleManager, RoleEmployee} {
		assert.False(t, RoleHasPermission(role, PermSettingsManage), "role %s", role)
	}

	// Only admin tiers touch user administration.
	for _, role := range []Role{RoleInstructor, RoleManager, RoleEmployee} {
		assert.False(t, RoleHasPermission(role, PermUsersChangeRole), "role %s", role)
	}

	// Report visibility narrows down the hierarchy.
	assert.True(t, RoleHasPermission(RoleAdmin, PermReportsViewAll))
	assert.False(t, RoleHasPermission(RoleManager, PermReportsViewAll))
	assert.True(t, RoleHasPermission(RoleManager, PermReportsViewTeam))
	assert.False(t, RoleHasPermission(RoleEmployee, PermReportsViewTeam))
	assert.True(t, RoleHasPermission(RoleEmployee, PermReportsViewOwn))
}

func TestSuperAdminHoldsEveryGrantedPermission(t *testing.T) {
	super := PermissionsFor(RoleSuperAdmin)
	for _, role := range []Role{RoleAdmin, RoleInstructor, RoleManager, RoleEmployee} {
		for _, p := range PermissionsFor(role) {
			assert.Contains(t, super, p, "role %s grants %s", role, p)
		}
	}
}

func TestEmployeeIsLowestPrivilege(t *testing.T) {
	employee := PermissionsFor(RoleEmployee)
	for _, role := range []Role{RoleSuperAdmin, RoleAdmin, RoleInstructor, RoleManager} {
		granted := PermissionsFor(role)
		for _, p := range employee {
			assert.Contains(t, granted, p, "role %s lacks the baseline %s", role, p)
		}
		assert.Greater(t, len(granted), len(employee), "role %s", role)
	}
}

func TestPermissionsForReturnsCopy(t *testing.T) {
	first := PermissionsFor(RoleEmployee)
	require.NotEmpty(t, first)
	first[0] = Permission("tampered")

	second := PermissionsFor(RoleEmployee)
	assert.NotContains(t, second, Permission("tampered"))
}

func TestPermissionsForUnknownRole(t *testing.T) {
	assert.Nil(t, PermissionsFor(Role("ghost")))
	assert.False(t, RoleHasPermission(Role("ghost"), PermCoursesView))
}

func TestRoleValidation(t *testing.T) {
	for _, role := range []Role{RoleSuperAdmin, RoleAdmin, RoleInstructor, RoleManager, RoleEmployee} {
		assert.True(t, role.Valid(), "role %s", role)
	}
	assert.False(t, Role("ghost").Valid())
	assert.Equal(t, RoleEmployee, DefaultRole)
}
