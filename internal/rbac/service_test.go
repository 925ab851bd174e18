package rbac

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pelita-edu/pelita/internal/shared"
)

type mockRepository struct {
	roles       map[int64]*Role
	rolesByName map[string]*Role
	rolePerms   map[int64][]string
	assignments map[int64]map[int64]struct{} // userID -> roleIDs
	nextRoleID  int64
	knownUsers  map[int64]struct{}

	// Error injection
	listErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		roles:       make(map[int64]*Role),
		rolesByName: make(map[string]*Role),
		rolePerms:   make(map[int64][]string),
		assignments: make(map[int64]map[int64]struct{}),
		knownUsers:  map[int64]struct{}{1: {}, 2: {}, 7: {}},
		nextRoleID:  1,
	}
}

func (m *mockRepository) ListRoles(ctx context.Context) ([]Role, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []Role
	for _, r := range m.roles {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockRepository) GetRole(ctx context.Context, id int64) (Role, error) {
	r, ok := m.roles[id]
	if !ok {
		return Role{}, shared.ErrNotFound
	}
	return *r, nil
}

func (m *mockRepository) GetRoleByName(ctx context.Context, name string) (Role, error) {
	r, ok := m.rolesByName[name]
	if !ok {
		return Role{}, shared.ErrNotFound
	}
	return *r, nil
}

func (m *mockRepository) CreateRole(ctx context.Context, name, description string, permissions []string) (Role, error) {
	if _, dup := m.rolesByName[name]; dup {
		return Role{}, shared.ErrConflict
	}
	role := &Role{ID: m.nextRoleID, Name: name, Description: description, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.nextRoleID++
	m.roles[role.ID] = role
	m.rolesByName[name] = role
	m.rolePerms[role.ID] = append([]string(nil), permissions...)
	return *role, nil
}

func (m *mockRepository) UpdateRole(ctx context.Context, id int64, name, description string, permissions []string) (Role, error) {
	role, ok := m.roles[id]
	if !ok {
		return Role{}, shared.ErrNotFound
	}
	if other, dup := m.rolesByName[name]; dup && other.ID != id {
		return Role{}, shared.ErrConflict
	}
	delete(m.rolesByName, role.Name)
	role.Name = name
	role.Description = description
	role.UpdatedAt = time.Now()
	m.rolesByName[name] = role
	m.rolePerms[id] = append([]string(nil), permissions...)
	return *role, nil
}

func (m *mockRepository) DeleteRole(ctx context.Context, id int64) error {
	role, ok := m.roles[id]
	if !ok {
		return shared.ErrNotFound
	}
	delete(m.rolesByName, role.Name)
	delete(m.roles, id)
	delete(m.rolePerms, id)
	for _, held := range m.assignments {
		delete(held, id)
	}
	return nil
}

func (m *mockRepository) RolePermissions(ctx context.Context, roleID int64) ([]string, error) {
	if _, ok := m.roles[roleID]; !ok {
		return nil, shared.ErrNotFound
	}
	perms := append([]string(nil), m.rolePerms[roleID]...)
	sort.Strings(perms)
	return perms, nil
}

func (m *mockRepository) AssignRole(ctx context.Context, userID, roleID int64) error {
	if _, ok := m.knownUsers[userID]; !ok {
		return shared.ErrNotFound
	}
	if _, ok := m.roles[roleID]; !ok {
		return shared.ErrNotFound
	}
	if m.assignments[userID] == nil {
		m.assignments[userID] = make(map[int64]struct{})
	}
	m.assignments[userID][roleID] = struct{}{}
	return nil
}

func (m *mockRepository) RevokeRole(ctx context.Context, userID, roleID int64) error {
	delete(m.assignments[userID], roleID)
	return nil
}

func (m *mockRepository) RolesForUser(ctx context.Context, userID int64) ([]Role, error) {
	var out []Role
	for roleID := range m.assignments[userID] {
		out = append(out, *m.roles[roleID])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockRepository) PermissionsForUser(ctx context.Context, userID int64) ([]string, error) {
	set := make(map[string]struct{})
	for roleID := range m.assignments[userID] {
		for _, p := range m.rolePerms[roleID] {
			set[p] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

var _ RepositoryPort = (*mockRepository)(nil)

func TestCreateRoleValidatesPermissions(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	_, err := svc.CreateRole(ctx, "librarian", "", []Permission{Permission("library:burn")})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreateRole(ctx, "librarian", "", []Permission{PermissionAll})
	require.ErrorIs(t, err, shared.ErrValidation, "wildcard must not be assignable through role CRUD")

	role, err := svc.CreateRole(ctx, "librarian", "Library staff", []Permission{PermStudentView, PermStudentView, PermCalendarView})
	require.NoError(t, err)
	assert.ElementsMatch(t, []Permission{PermStudentView, PermCalendarView}, role.Permissions, "duplicates collapse")
}

func TestCreateRoleConflictOnDuplicateName(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	_, err := svc.CreateRole(ctx, "homeroom", "", []Permission{PermStudentView})
	require.NoError(t, err)
	_, err = svc.CreateRole(ctx, "homeroom", "", []Permission{PermStudentView})
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestUpdateRoleReplacesPermissionSet(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, "coordinator", "", []Permission{PermProgramView, PermStudentView})
	require.NoError(t, err)

	updated, err := svc.UpdateRole(ctx, role.ID, RolePatch{Permissions: []Permission{PermCalendarManage}})
	require.NoError(t, err)
	assert.Equal(t, []Permission{PermCalendarManage}, updated.Permissions, "full replacement, not merge")

	perms, err := svc.GetRolePermissions(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, []Permission{PermCalendarManage}, perms, "round trip returns exactly the last set")
}

func TestUpdateRoleUnknownID(t *testing.T) {
	svc := NewService(newMockRepository())
	_, err := svc.UpdateRole(context.Background(), 999, RolePatch{})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAssignRoleIdempotent(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, "homeroom", "", []Permission{PermStudentView})
	require.NoError(t, err)

	require.NoError(t, svc.AssignRole(ctx, 7, role.ID))
	require.NoError(t, svc.AssignRole(ctx, 7, role.ID), "second assign is a no-op, not an error")

	roles, err := svc.RolesForUser(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, roles, 1)

	require.ErrorIs(t, svc.AssignRole(ctx, 999, role.ID), shared.ErrNotFound)
	require.ErrorIs(t, svc.AssignRole(ctx, 7, 999), shared.ErrNotFound)
}

func TestRevokeReflectedInNextPrincipal(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	teacher, err := svc.CreateRole(ctx, "teacher", "", []Permission{PermUserRead, PermCalendarView})
	require.NoError(t, err)
	coordinator, err := svc.CreateRole(ctx, "program_coordinator", "", []Permission{PermProgramManage, PermCalendarView})
	require.NoError(t, err)

	require.NoError(t, svc.AssignRole(ctx, 7, teacher.ID))
	require.NoError(t, svc.AssignRole(ctx, 7, coordinator.ID))

	p, err := svc.ResolvePrincipal(ctx, 7)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"teacher", "program_coordinator"}, p.Roles)
	assert.ElementsMatch(t,
		[]string{"user:read", "academic-calendar:view", "program:manage"},
		p.Permissions, "union of both roles with no duplicates")

	require.NoError(t, svc.RevokeRole(ctx, 7, coordinator.ID))
	require.NoError(t, svc.RevokeRole(ctx, 7, coordinator.ID), "second revoke is a no-op")

	p, err = svc.ResolvePrincipal(ctx, 7)
	require.NoError(t, err)
	assert.NotContains(t, p.Permissions, "program:manage", "permission uniquely granted by the revoked role must be gone")
	assert.Contains(t, p.Permissions, "academic-calendar:view", "permission still granted by a remaining role survives")
}

func TestDeleteRoleCascadesAssignments(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, "homeroom", "", []Permission{PermStudentView})
	require.NoError(t, err)
	require.NoError(t, svc.AssignRole(ctx, 7, role.ID))

	require.NoError(t, svc.DeleteRole(ctx, role.ID))
	require.ErrorIs(t, svc.DeleteRole(ctx, role.ID), shared.ErrNotFound)

	// Deleting a user's only role leaves an authenticated but permission-less
	// principal.
	p, err := svc.ResolvePrincipal(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, p.Roles)
	assert.Empty(t, p.Permissions)
	assert.True(t, p.Authenticated())
}

func TestEnsureBootstrapRoles(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	require.NoError(t, svc.EnsureBootstrapRoles(ctx))
	require.NoError(t, svc.EnsureBootstrapRoles(ctx), "seeding must be idempotent")

	roles, err := svc.ListRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, len(BootstrapRoles()))

	super, err := repo.GetRoleByName(ctx, RoleSuperAdmin)
	require.NoError(t, err)
	perms, err := repo.RolePermissions(ctx, super.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{string(PermissionAll)}, perms, "super_admin holds only the wildcard sentinel")

	teacher, err := repo.GetRoleByName(ctx, RoleTeacher)
	require.NoError(t, err)
	teacherPerms, err := svc.GetRolePermissions(ctx, teacher.ID)
	require.NoError(t, err)
	for _, p := range teacherPerms {
		assert.True(t, p.Valid(), "seeded subsets stay inside the catalog")
	}
}
