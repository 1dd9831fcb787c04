package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/HeChing/Capacitapp/internal/app_errors"
	"github.com/HeChing/Capacitapp/internal/models"
	"github.com/HeChing/Capacitapp/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockUserRepo struct {
	users map[uuid.UUID]*models.User

	failReads     bool
	createCalls   int
	roleUpdates   map[uuid.UUID]models.Role
	activeUpdates map[uuid.UUID]bool
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:         make(map[uuid.UUID]*models.User),
		roleUpdates:   make(map[uuid.UUID]models.Role),
		activeUpdates: make(map[uuid.UUID]bool),
	}
}

func (m *mockUserRepo) UserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if m.failReads {
		return nil, errors.New("connection refused")
	}
	u, ok := m.users[id]
	if !ok {
		return nil, app_errors.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepo) CreateIfAbsent(_ context.Context, user models.User) (*models.User, error) {
	m.createCalls++
	if existing, ok := m.users[user.ID]; ok {
		copied := *existing
		return &copied, nil
	}
	m.users[user.ID] = &user
	copied := user
	return &copied, nil
}

func (m *mockUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if u, ok := m.users[id]; ok {
		u.LastLogin = &at
	}
	return nil
}

func (m *mockUserRepo) UpdateRole(_ context.Context, id uuid.UUID, role models.Role) error {
	m.roleUpdates[id] = role
	m.users[id].Role = role
	return nil
}

func (m *mockUserRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	m.activeUpdates[id] = active
	m.users[id].IsActive = active
	return nil
}

func (m *mockUserRepo) ListUsers(_ context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func testResolver(repo *mockUserRepo) *Resolver {
	return NewResolver(logger.New("local"), repo)
}

func admin() *ResolvedPrincipal {
	return &ResolvedPrincipal{
		User:        models.User{ID: uuid.New(), Role: models.RoleAdmin, IsActive: true},
		Permissions: models.PermissionsFor(models.RoleAdmin),
	}
}

func TestResolveExistingUser(t *testing.T) {
	repo := newMockUserRepo()
	id := uuid.New()
	repo.users[id] = &models.User{ID: id, Email: "ana@corp.test", Role: models.RoleManager, IsActive: true}

	p, err := testResolver(repo).Resolve(context.Background(), id, "ana@corp.test", "Ana")

	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, p.User.Role)
	assert.ElementsMatch(t, models.PermissionsFor(models.RoleManager), p.Permissions)
	assert.False(t, p.Degraded)
	assert.Zero(t, repo.createCalls)
}

func TestResolveProvisionsFirstLogin(t *testing.T) {
	repo := newMockUserRepo()
	id := uuid.New()

	p, err := testResolver(repo).Resolve(context.Background(), id, "new@corp.test", "New Hire")

	require.NoError(t, err)
	assert.Equal(t, models.DefaultRole, p.User.Role)
	assert.True(t, p.User.IsActive)
	assert.Equal(t, 1, repo.createCalls)

	stored, ok := repo.users[id]
	require.True(t, ok)
	assert.Equal(t, "new@corp.test", stored.Email)
}

func TestResolveProvisioningIsIdempotent(t *testing.T) {
	repo := newMockUserRepo()
	id := uuid.New()
	r := testResolver(repo)

	first, err := r.Resolve(context.Background(), id, "u@corp.test", "U")
	require.NoError(t, err)

	// Simulate the role being raised between logins.
	repo.users[id].Role = models.RoleInstructor

	second, err := r.Resolve(context.Background(), id, "u@corp.test", "U")
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, models.RoleInstructor, second.User.Role)
	assert.Equal(t, 1, repo.createCalls, "an existing profile must never be re-created")
}

func TestResolveDegradesWhenStoreUnreachable(t *testing.T) {
	repo := newMockUserRepo()
	repo.failReads = true
	id := uuid.New()

	p, err := testResolver(repo).Resolve(context.Background(), id, "x@corp.test", "X")

	require.NoError(t, err)
	assert.True(t, p.Degraded)
	assert.Equal(t, models.DefaultRole, p.User.Role)
	assert.ElementsMatch(t, models.PermissionsFor(models.DefaultRole), p.Permissions)
}

func TestResolveRejectsInactiveUser(t *testing.T) {
	repo := newMockUserRepo()
	id := uuid.New()
	repo.users[id] = &models.User{ID: id, Role: models.RoleEmployee, IsActive: false}

	_, err := testResolver(repo).Resolve(context.Background(), id, "off@corp.test", "Off")

	assert.ErrorIs(t, err, app_errors.ErrUserInactive)
}

func TestChangeRole(t *testing.T) {
	repo := newMockUserRepo()
	target := uuid.New()
	repo.users[target] = &models.User{ID: target, Role: models.RoleEmployee, IsActive: true}
	r := testResolver(repo)

	require.NoError(t, r.ChangeRole(context.Background(), admin(), target, models.RoleInstructor))
	assert.Equal(t, models.RoleInstructor, repo.roleUpdates[target])
}

func TestChangeRoleRejectsUnknownRole(t *testing.T) {
	repo := newMockUserRepo()
	target := uuid.New()
	repo.users[target] = &models.User{ID: target, Role: models.RoleEmployee, IsActive: true}

	err := testResolver(repo).ChangeRole(context.Background(), admin(), target, models.Role("owner"))

	assert.ErrorIs(t, err, app_errors.ErrInvalidRole)
	assert.Empty(t, repo.roleUpdates)
}

func TestChangeRoleRequiresPermission(t *testing.T) {
	repo := newMockUserRepo()
	target := uuid.New()
	repo.users[target] = &models.User{ID: target, Role: models.RoleEmployee, IsActive: true}

	actor := &ResolvedPrincipal{
		User:        models.User{ID: uuid.New(), Role: models.RoleManager, IsActive: true},
		Permissions: models.PermissionsFor(models.RoleManager),
	}
	err := testResolver(repo).ChangeRole(context.Background(), actor, target, models.RoleInstructor)

	assert.ErrorIs(t, err, app_errors.ErrNotAuthorized)
}

func TestSetActiveDeactivatesWithoutDeleting(t *testing.T) {
	repo := newMockUserRepo()
	target := uuid.New()
	repo.users[target] = &models.User{ID: target, Role: models.RoleEmployee, IsActive: true}
	r := testResolver(repo)

	require.NoError(t, r.SetActive(context.Background(), admin(), target, false))

	stored, ok := repo.users[target]
	require.True(t, ok, "deactivation must keep the record")
	assert.False(t, stored.IsActive)
}

func TestListUsersRequiresPermission(t *testing.T) {
	repo := newMockUserRepo()
	repo.users[uuid.New()] = &models.User{ID: uuid.New(), Role: models.RoleEmployee, IsActive: true}
	r := testResolver(repo)

	_, err := r.ListUsers(context.Background(), &ResolvedPrincipal{
		User:        models.User{Role: models.RoleEmployee, IsActive: true},
		Permissions: models.PermissionsFor(models.RoleEmployee),
	})
	assert.ErrorIs(t, err, app_errors.ErrNotAuthorized)

	list, err := r.ListUsers(context.Background(), admin())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
