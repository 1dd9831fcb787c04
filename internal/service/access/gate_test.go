package access

import (
	"testing"

	"github.com/HeChing/Capacitapp/internal/models"
	"github.com/HeChing/Capacitapp/internal/service/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPermissions struct {
	calls int
}

func (c *countingPermissions) PermissionsFor(role models.Role) []models.Permission {
	c.calls++
	return models.PermissionsFor(role)
}

func principalWith(role models.Role) *identity.ResolvedPrincipal {
	return &identity.ResolvedPrincipal{
		User: models.User{
			Role:     role,
			IsActive: true,
		},
		Permissions: models.PermissionsFor(role),
	}
}

func TestEvaluatePendingWhileUnresolved(t *testing.T) {
	gate := NewGate(nil)

	d := gate.Evaluate(nil, false, Requirement{Roles: []models.Role{models.RoleAdmin}})

	assert.Equal(t, EffectPending, d.Effect)
	assert.False(t, d.Allowed())
}

func TestEvaluateRedirectsAnonymousToSignIn(t *testing.T) {
	gate := NewGate(nil)

	d := gate.Evaluate(nil, true, Requirement{})

	assert.Equal(t, EffectRedirect, d.Effect)
	assert.Equal(t, SignInTarget, d.Target)
}

func TestEvaluateRedirectsInactiveToSignIn(t *testing.T) {
	gate := NewGate(nil)
	p := principalWith(models.RoleAdmin)
	p.User.IsActive = false

	d := gate.Evaluate(p, true, Requirement{})

	assert.Equal(t, EffectRedirect, d.Effect)
	assert.Equal(t, SignInTarget, d.Target)
}

func TestEvaluateAllowsWithNoRequirements(t *testing.T) {
	gate := NewGate(nil)

	d := gate.Evaluate(principalWith(models.RoleEmployee), true, Requirement{})

	assert.True(t, d.Allowed())
}

func TestEvaluateRoleCheckSkipsPermissionDerivation(t *testing.T) {
	perms := &countingPermissions{}
	gate := NewGate(perms)

	d := gate.Evaluate(principalWith(models.RoleEmployee), true, Requirement{
		Roles:       []models.Role{models.RoleAdmin},
		Permissions: []models.Permission{models.PermUsersView},
	})

	require.Equal(t, EffectRedirect, d.Effect)
	assert.Equal(t, DefaultFallback, d.Target)
	assert.Zero(t, perms.calls, "failed role check must not derive permissions")
}

func TestEvaluateRoleThenPermission(t *testing.T) {
	perms := &countingPermissions{}
	gate := NewGate(perms)

	d := gate.Evaluate(principalWith(models.RoleAdmin), true, Requirement{
		Roles:       []models.Role{models.RoleAdmin},
		Permissions: []models.Permission{models.PermUsersView},
	})

	assert.True(t, d.Allowed())
	assert.Equal(t, 1, perms.calls)
}

func TestEvaluateAnyOfPermissions(t *testing.T) {
	gate := NewGate(nil)

	d := gate.Evaluate(principalWith(models.RoleManager), true, Requirement{
		Permissions: []models.Permission{models.PermReportsViewAll, models.PermReportsViewTeam},
	})

	assert.True(t, d.Allowed())
}

func TestEvaluateAllOfPermissions(t *testing.T) {
	gate := NewGate(nil)

	req := Requirement{
		Permissions: []models.Permission{models.PermReportsViewTeam, models.PermReportsViewOwn},
		RequireAll:  true,
	}

	assert.True(t, gate.Evaluate(principalWith(models.RoleManager), true, req).Allowed())

	d := gate.Evaluate(principalWith(models.RoleEmployee), true, req)
	assert.Equal(t, EffectRedirect, d.Effect)
	assert.Equal(t, DefaultFallback, d.Target)
}

func TestEvaluateCustomFallbackTarget(t *testing.T) {
	gate := NewGate(nil)

	d := gate.Evaluate(principalWith(models.RoleEmployee), true, Requirement{
		Roles:      []models.Role{models.RoleInstructor},
		RedirectTo: "/courses",
	})

	assert.Equal(t, EffectRedirect, d.Effect)
	assert.Equal(t, "/courses", d.Target)
}

func TestEvaluateSuperAdminHoldsSettingsManage(t *testing.T) {
	gate := NewGate(nil)

	req := Requirement{Permissions: []models.Permission{models.PermSettingsManage}}

	assert.True(t, gate.Evaluate(principalWith(models.RoleSuperAdmin), true, req).Allowed())
	assert.False(t, gate.Evaluate(principalWith(models.RoleAdmin), true, req).Allowed())
}
