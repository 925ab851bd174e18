package rbac

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pelita-edu/pelita/internal/shared"
)

// Service orchestrates role CRUD and the user-role assignment store. Role
// mutations never touch live sessions: a session keeps its permission
// snapshot until the next login.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// RolePatch carries a role update. Nil fields are left unchanged; a non-nil
// Permissions slice replaces the full permission set.
type RolePatch struct {
	Name        *string
	Description *string
	Permissions []Permission
}

// ListRoles returns all roles ordered by name.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// GetRole fetches a role with its permission set.
func (s *Service) GetRole(ctx context.Context, id int64) (RoleWithPermissions, error) {
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return RoleWithPermissions{}, err
	}
	perms, err := s.repo.RolePermissions(ctx, id)
	if err != nil {
		return RoleWithPermissions{}, err
	}
	return RoleWithPermissions{Role: role, Permissions: toPermissions(perms)}, nil
}

// GetRoleByName fetches a role by its unique name.
func (s *Service) GetRoleByName(ctx context.Context, name string) (Role, error) {
	return s.repo.GetRoleByName(ctx, name)
}

// GetRolePermissions returns the permission set of a role.
func (s *Service) GetRolePermissions(ctx context.Context, id int64) ([]Permission, error) {
	perms, err := s.repo.RolePermissions(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPermissions(perms), nil
}

// CreateRole creates a role with an explicit permission set.
func (s *Service) CreateRole(ctx context.Context, name, description string, permissions []Permission) (RoleWithPermissions, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return RoleWithPermissions{}, fmt.Errorf("%w: role name required", shared.ErrValidation)
	}
	normalized, err := normalizePermissionSet(permissions)
	if err != nil {
		return RoleWithPermissions{}, err
	}
	role, err := s.repo.CreateRole(ctx, name, strings.TrimSpace(description), normalized)
	if err != nil {
		return RoleWithPermissions{}, err
	}
	return RoleWithPermissions{Role: role, Permissions: toPermissions(normalized)}, nil
}

// UpdateRole applies a patch. A supplied permission set fully replaces the
// previous associations.
func (s *Service) UpdateRole(ctx context.Context, id int64, patch RolePatch) (RoleWithPermissions, error) {
	current, err := s.GetRole(ctx, id)
	if err != nil {
		return RoleWithPermissions{}, err
	}

	name := current.Name
	if patch.Name != nil {
		name = strings.TrimSpace(*patch.Name)
		if name == "" {
			return RoleWithPermissions{}, fmt.Errorf("%w: role name required", shared.ErrValidation)
		}
	}
	description := current.Description
	if patch.Description != nil {
		description = strings.TrimSpace(*patch.Description)
	}

	perms := fromPermissions(current.Permissions)
	if patch.Permissions != nil {
		perms, err = normalizePermissionSet(patch.Permissions)
		if err != nil {
			return RoleWithPermissions{}, err
		}
	}

	role, err := s.repo.UpdateRole(ctx, id, name, description, perms)
	if err != nil {
		return RoleWithPermissions{}, err
	}
	return RoleWithPermissions{Role: role, Permissions: toPermissions(perms)}, nil
}

// DeleteRole removes a role; its assignments cascade away. A user whose last
// role is deleted keeps an authenticatable account with zero permissions.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	return s.repo.DeleteRole(ctx, id)
}

// AssignRole grants a role to a user. Assigning an already-held role is a
// no-op, not an error.
func (s *Service) AssignRole(ctx context.Context, userID, roleID int64) error {
	return s.repo.AssignRole(ctx, userID, roleID)
}

// RevokeRole removes a role from a user. Revoking an absent role is a no-op.
func (s *Service) RevokeRole(ctx context.Context, userID, roleID int64) error {
	return s.repo.RevokeRole(ctx, userID, roleID)
}

// RolesForUser returns the roles currently held by a user.
func (s *Service) RolesForUser(ctx context.Context, userID int64) ([]Role, error) {
	return s.repo.RolesForUser(ctx, userID)
}

// PermissionsForUser returns the flattened distinct permission union across
// the user's roles.
func (s *Service) PermissionsForUser(ctx context.Context, userID int64) ([]string, error) {
	return s.repo.PermissionsForUser(ctx, userID)
}

// ResolvePrincipal computes the session snapshot for a user: distinct role
// names plus the flattened permission union. Called at login/refresh only.
func (s *Service) ResolvePrincipal(ctx context.Context, userID int64) (shared.Principal, error) {
	roles, err := s.repo.RolesForUser(ctx, userID)
	if err != nil {
		return shared.Principal{}, err
	}
	perms, err := s.repo.PermissionsForUser(ctx, userID)
	if err != nil {
		return shared.Principal{}, err
	}
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}
	return shared.Principal{UserID: userID, Roles: names, Permissions: perms}, nil
}

// EnsureBootstrapRoles seeds the default role matrix. Existing roles are left
// untouched so operator edits survive restarts.
func (s *Service) EnsureBootstrapRoles(ctx context.Context) error {
	for _, b := range BootstrapRoles() {
		if _, err := s.repo.GetRoleByName(ctx, b.Name); err == nil {
			continue
		} else if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if _, err := s.repo.CreateRole(ctx, b.Name, b.Description, fromPermissions(b.Permissions)); err != nil {
			if errors.Is(err, shared.ErrConflict) {
				continue
			}
			return err
		}
	}
	return nil
}

func normalizePermissionSet(permissions []Permission) ([]string, error) {
	seen := make(map[Permission]struct{}, len(permissions))
	out := make([]string, 0, len(permissions))
	for _, p := range permissions {
		if !p.Valid() {
			return nil, fmt.Errorf("%w: unknown permission %q", shared.ErrValidation, p)
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, string(p))
	}
	sort.Strings(out)
	return out, nil
}

func toPermissions(perms []string) []Permission {
	out := make([]Permission, len(perms))
	for i, p := range perms {
		out[i] = Permission(p)
	}
	return out
}

func fromPermissions(perms []Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
