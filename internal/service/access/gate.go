package access

import (
	"github.com/HeChing/Capacitapp/internal/models"
	"github.com/HeChing/Capacitapp/internal/service/identity"
)

type Effect int

const (
	// EffectPending means the principal is still being resolved; callers
	// must hold rendering instead of redirecting.
	EffectPending Effect = iota
	EffectAllow
	EffectRedirect
)

const (
	SignInTarget    = "/login"
	DefaultFallback = "/home"
)

// Requirement describes what a protected capability demands: membership in
// any of Roles, and/or holding the Permissions (any-of by default, all-of
// when RequireAll is set).
type Requirement struct {
	Roles       []models.Role
	Permissions []models.Permission
	RequireAll  bool
	RedirectTo  string
}

type Decision struct {
	Effect Effect
	Target string
}

func (d Decision) Allowed() bool {
	return d.Effect == EffectAllow
}

// PermissionSource derives the permission set for a role. The static
// role table is the production source; tests substitute their own.
type PermissionSource interface {
	PermissionsFor(role models.Role) []models.Permission
}

type staticPermissions struct{}

func (staticPermissions) PermissionsFor(role models.Role) []models.Permission {
	return models.PermissionsFor(role)
}

type Gate struct {
	perms PermissionSource
}

func NewGate(perms PermissionSource) *Gate {
	if perms == nil {
		perms = staticPermissions{}
	}
	return &Gate{perms: perms}
}

// Evaluate runs the checks in a fixed order: pending, authentication,
// roles, then permissions. The role check short-circuits before any
// permission derivation so an unauthorized role never observes the
// permission-set shape.
func (g *Gate) Evaluate(p *identity.ResolvedPrincipal, resolved bool, req Requirement) Decision {
	if !resolved {
		return Decision{Effect: EffectPending}
	}
	if p == nil {
		return Decision{Effect: EffectRedirect, Target: SignInTarget}
	}
	if !p.User.IsActive {
		return Decision{Effect: EffectRedirect, Target: SignInTarget}
	}

	fallback := req.RedirectTo
	if fallback == "" {
		fallback = DefaultFallback
	}

	if len(req.Roles) > 0 && !hasAnyRole(p.User.Role, req.Roles) {
		return Decision{Effect: EffectRedirect, Target: fallback}
	}

	if len(req.Permissions) > 0 {
		granted := g.perms.PermissionsFor(p.User.Role)
		if !satisfies(granted, req.Permissions, req.RequireAll) {
			return Decision{Effect: EffectRedirect, Target: fallback}
		}
	}

	return Decision{Effect: EffectAllow}
}

func hasAnyRole(role models.Role, allowed []models.Role) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

func satisfies(granted, required []models.Permission, requireAll bool) bool {
	has := func(p models.Permission) bool {
		for _, g := range granted {
			if g == p {
				return true
			}
		}
		return false
	}
	if requireAll {
		for _, p := range required {
			if !has(p) {
				return false
			}
		}
		return true
	}
	for _, p := range required {
		if has(p) {
			return true
		}
	}
	return false
}
