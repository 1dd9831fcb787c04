package identity

import (
	"context"
	"errors"
	"time"

	"github.com/HeChing/Capacitapp/internal/app_errors"
	"github.com/HeChing/Capacitapp/internal/models"
	"github.com/HeChing/Capacitapp/pkg/logger"
	"github.com/google/uuid"
)

type userRepo interface {
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateIfAbsent(ctx context.Context, user models.User) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	ListUsers(ctx context.Context) ([]models.User, error)
}

// ResolvedPrincipal is an authenticated user together with the permission
// set derived from its role. Permissions are recomputed on every resolution
// and never persisted, so they cannot drift from the role.
type ResolvedPrincipal struct {
	User        models.User
	Permissions []models.Permission

	// Degraded marks a principal resolved while the backing store was
	// unreachable: lowest-privilege role, nothing persisted.
	Degraded bool
}

func (p *ResolvedPrincipal) HasRole(role models.Role) bool {
	return p.User.Role == role
}

func (p *ResolvedPrincipal) HasAnyRole(roles ...models.Role) bool {
	for _, r := range roles {
		if p.User.Role == r {
			return true
		}
	}
	return false
}

func (p *ResolvedPrincipal) HasPermission(perm models.Permission) bool {
	for _, granted := range p.Permissions {
		if granted == perm {
			return true
		}
	}
	return false
}

func (p *ResolvedPrincipal) HasAnyPermission(perms ...models.Permission) bool {
	for _, perm := range perms {
		if p.HasPermission(perm) {
			return true
		}
	}
	return false
}

func (p *ResolvedPrincipal) HasAllPermissions(perms ...models.Permission) bool {
	for _, perm := range perms {
		if !p.HasPermission(perm) {
			return false
		}
	}
	return true
}

type Resolver struct {
	log   logger.Log
	users userRepo
}

func NewResolver(log logger.Log, users userRepo) *Resolver {
	return &Resolver{
		log:   log,
		users: users,
	}
}

// Resolve maps an authenticated identity onto a profile, provisioning one
// with the default role on first login. Provisioning is a conditional
// write, so two concurrent first logins converge on a single profile.
// If the store is unreachable the principal degrades to the lowest
// privilege role instead of failing open.
func (r *Resolver) Resolve(ctx context.Context, uid uuid.UUID, email, displayName string) (*ResolvedPrincipal, error) {
	user, err := r.users.UserByID(ctx, uid)
	switch {
	case err == nil:
	case errors.Is(err, app_errors.ErrUserNotFound):
		user, err = r.users.CreateIfAbsent(ctx, models.User{
			ID:          uid,
			Email:       email,
			DisplayName: displayName,
			Role:        models.DefaultRole,
			IsActive:    true,
			CreatedAt:   time.Now().UTC(),
		})
		if err != nil {
			r.log.ErrorErr("identity: provisioning failed, degrading to default role", err, "user_id", uid.String())
			return r.degraded(uid, email, displayName), nil
		}
	default:
		r.log.ErrorErr("identity: store unreachable, degrading to default role", err, "user_id", uid.String())
		return r.degraded(uid, email, displayName), nil
	}

	if !user.IsActive {
		return nil, app_errors.ErrUserInactive
	}

	if err := r.users.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		r.log.WarnErr("identity: failed to record last login", err, "user_id", user.ID.String())
	}

	return &ResolvedPrincipal{
		User:        *user,
		Permissions: models.PermissionsFor(user.Role),
	}, nil
}

func (r *Resolver) degraded(uid uuid.UUID, email, displayName string) *ResolvedPrincipal {
	return &ResolvedPrincipal{
		User: models.User{
			ID:          uid,
			Email:       email,
			DisplayName: displayName,
			Role:        models.DefaultRole,
			IsActive:    true,
		},
		Permissions: models.PermissionsFor(models.DefaultRole),
		Degraded:    true,
	}
}

// ChangeRole reassigns a user's role. The permission set follows the new
// role automatically on the next resolution.
func (r *Resolver) ChangeRole(ctx context.Context, actor *ResolvedPrincipal, targetID uuid.UUID, newRole models.Role) error {
	if !actor.HasPermission(models.PermUsersChangeRole) {
		return app_errors.ErrNotAuthorized
	}
	if !newRole.Valid() {
		return app_errors.ErrInvalidRole
	}
	if _, err := r.users.UserByID(ctx, targetID); err != nil {
		return err
	}
	return r.users.UpdateRole(ctx, targetID, newRole)
}

// SetActive toggles the deactivation flag. Users are never deleted.
func (r *Resolver) SetActive(ctx context.Context, actor *ResolvedPrincipal, targetID uuid.UUID, active bool) error {
	if !actor.HasPermission(models.PermUsersEdit) {
		return app_errors.ErrNotAuthorized
	}
	if _, err := r.users.UserByID(ctx, targetID); err != nil {
		return err
	}
	return r.users.SetActive(ctx, targetID, active)
}

func (r *Resolver) ListUsers(ctx context.Context, actor *ResolvedPrincipal) ([]models.User, error) {
	if !actor.HasPermission(models.PermUsersView) {
		return nil, app_errors.ErrNotAuthorized
	}
	return r.users.ListUsers(ctx)
}

func (r *Resolver) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.users.UserByID(ctx, id)
}
