// Copyright (c) 2026 Campora. All rights reserved.

package rbac

import (
	"context"
	"fmt"

	"github.com/campora/campora/internal/platform/apperr"
	"github.com/campora/campora/pkg/slice"
	"github.com/campora/campora/pkg/uuid"
)

// Service implements role and permission resolution and management.
//
// It doubles as the auth service's RoleDirectory and the middleware's
// PermissionChecker; both contracts are satisfied structurally.
type Service struct {
	roleRepository       RoleRepository
	permissionRepository PermissionRepository
	assignmentRepository AssignmentRepository
}

// NewService constructs a new rbac [Service] with necessary dependencies.
func NewService(
	roleRepo RoleRepository,
	permissionRepo PermissionRepository,
	assignmentRepo AssignmentRepository,
) *Service {
	return &Service{
		roleRepository:       roleRepo,
		permissionRepository: permissionRepo,
		assignmentRepository: assignmentRepo,
	}
}

// # Resolution

/*
NamesFor returns the role names currently assigned to the identity.

Parameters:
  - context: context.Context
  - identityID: string

Returns:
  - []string: Role names, ordered alphabetically
  - error: Retrieval failures
*/
func (service *Service) NamesFor(context context.Context, identityID string) ([]string, error) {
	roles, err := service.assignmentRepository.RolesFor(context, identityID)
	if err != nil {
		return nil, err
	}

	return slice.Map(roles, func(role Role) string { return role.Name }), nil
}

/*
EffectivePermissions returns the union of permissions across all of the
identity's roles.

Parameters:
  - context: context.Context
  - identityID: string

Returns:
  - []Permission: Deduplicated effective permissions
  - error: Retrieval failures
*/
func (service *Service) EffectivePermissions(context context.Context, identityID string) ([]Permission, error) {
	return service.assignmentRepository.PermissionsForIdentity(context, identityID)
}

/*
Check reports whether the identity holds the named permission through any of
its roles.

Parameters:
  - context: context.Context
  - identityID: string
  - permission: string (e.g. "students.edit")

Returns:
  - bool: true if the permission is held
  - error: Retrieval failures
*/
func (service *Service) Check(context context.Context, identityID, permission string) (bool, error) {
	permissions, err := service.assignmentRepository.PermissionsForIdentity(context, identityID)
	if err != nil {
		return false, err
	}

	for _, held := range permissions {
		if held.Name == permission {
			return true, nil
		}
	}
	return false, nil
}

// # Assignment

/*
AssignByName links the identity to the role with the given name.

Parameters:
  - context: context.Context
  - identityID: string
  - roleName: string

Returns:
  - error: apperr.NotFound if the role does not exist, or storage failures
*/
func (service *Service) AssignByName(context context.Context, identityID, roleName string) error {
	role, err := service.roleRepository.FindByName(context, roleName)
	if err != nil {
		return err
	}

	return service.assignmentRepository.AssignRole(context, identityID, role.ID)
}

/*
AssignRole links the identity to the role with the given ID.

Parameters:
  - context: context.Context
  - identityID: string
  - roleID: string

Returns:
  - error: apperr.NotFound if the role does not exist, or storage failures
*/
func (service *Service) AssignRole(context context.Context, identityID, roleID string) error {
	if _, err := service.roleRepository.FindByID(context, roleID); err != nil {
		return err
	}

	return service.assignmentRepository.AssignRole(context, identityID, roleID)
}

/*
RemoveRole unlinks the identity from the role.

Parameters:
  - context: context.Context
  - identityID: string
  - roleID: string

Returns:
  - error: Storage failures
*/
func (service *Service) RemoveRole(context context.Context, identityID, roleID string) error {
	if _, err := service.roleRepository.FindByID(context, roleID); err != nil {
		return err
	}

	return service.assignmentRepository.RemoveRole(context, identityID, roleID)
}

/*
RolesFor returns the roles assigned to the identity.

Parameters:
  - context: context.Context
  - identityID: string

Returns:
  - []Role: Assigned roles
  - error: Retrieval failures
*/
func (service *Service) RolesFor(context context.Context, identityID string) ([]Role, error) {
	return service.assignmentRepository.RolesFor(context, identityID)
}

// # Role Management

// RoleInput holds the data for creating or updating a role.
type RoleInput struct {
	Name        string
	Description string
}

/*
ListRoles returns all roles.

Parameters:
  - context: context.Context

Returns:
  - []Role: All roles ordered by name
  - error: Retrieval failures
*/
func (service *Service) ListRoles(context context.Context) ([]Role, error) {
	return service.roleRepository.List(context)
}

/*
GetRole returns a role with its granted permissions.

Parameters:
  - context: context.Context
  - roleID: string

Returns:
  - *Role: Hydrated role
  - []Permission: Granted permissions
  - error: Not found or retrieval failures
*/
func (service *Service) GetRole(context context.Context, roleID string) (*Role, []Permission, error) {
	role, err := service.roleRepository.FindByID(context, roleID)
	if err != nil {
		return nil, nil, err
	}

	permissions, err := service.assignmentRepository.PermissionsForRole(context, roleID)
	if err != nil {
		return nil, nil, err
	}

	return role, permissions, nil
}

/*
CreateRole persists a new custom role.

Parameters:
  - context: context.Context
  - input: RoleInput

Returns:
  - *Role: Created role
  - error: Conflict on duplicate name, or storage failures
*/
func (service *Service) CreateRole(context context.Context, input RoleInput) (*Role, error) {
	role := &Role{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		IsSystem:    false,
	}

	if err := service.roleRepository.Create(context, role); err != nil {
		return nil, err
	}

	return role, nil
}

/*
UpdateRole renames a custom role or updates its description.

Description: System roles accept description changes but reject renames so
the seeded role names stay authoritative.

Parameters:
  - context: context.Context
  - roleID: string
  - input: RoleInput

Returns:
  - *Role: Updated role
  - error: Forbidden for system role renames, or storage failures
*/
func (service *Service) UpdateRole(context context.Context, roleID string, input RoleInput) (*Role, error) {
	role, err := service.roleRepository.FindByID(context, roleID)
	if err != nil {
		return nil, err
	}

	if role.IsSystem && input.Name != role.Name {
		return nil, apperr.Forbidden("System roles cannot be renamed")
	}

	role.Name = input.Name
	role.Description = input.Description

	if err := service.roleRepository.Update(context, role); err != nil {
		return nil, err
	}

	return role, nil
}

/*
DeleteRole removes a custom role along with its assignments and grants.

Parameters:
  - context: context.Context
  - roleID: string

Returns:
  - error: Forbidden for system roles, or storage failures
*/
func (service *Service) DeleteRole(context context.Context, roleID string) error {
	role, err := service.roleRepository.FindByID(context, roleID)
	if err != nil {
		return err
	}

	if role.IsSystem {
		return apperr.Forbidden("System roles cannot be deleted")
	}

	return service.roleRepository.Delete(context, roleID)
}

// # Grant Management

/*
ListPermissions returns the full permission catalog.

Parameters:
  - context: context.Context

Returns:
  - []Permission: Catalog entries ordered by name
  - error: Retrieval failures
*/
func (service *Service) ListPermissions(context context.Context) ([]Permission, error) {
	return service.permissionRepository.List(context)
}

/*
GrantPermission grants the named permission to a role.

Parameters:
  - context: context.Context
  - roleID: string
  - permissionName: string

Returns:
  - error: Not found or storage failures
*/
func (service *Service) GrantPermission(context context.Context, roleID, permissionName string) error {
	if _, err := service.roleRepository.FindByID(context, roleID); err != nil {
		return err
	}

	permission, err := service.permissionRepository.FindByName(context, permissionName)
	if err != nil {
		return err
	}

	if err := service.assignmentRepository.GrantPermission(context, roleID, permission.ID); err != nil {
		return fmt.Errorf("rbac_service_grant_failed: %w", err)
	}

	return nil
}

/*
RevokePermission revokes the named permission from a role.

Parameters:
  - context: context.Context
  - roleID: string
  - permissionName: string

Returns:
  - error: Not found or storage failures
*/
func (service *Service) RevokePermission(context context.Context, roleID, permissionName string) error {
	if _, err := service.roleRepository.FindByID(context, roleID); err != nil {
		return err
	}

	permission, err := service.permissionRepository.FindByName(context, permissionName)
	if err != nil {
		return err
	}

	if err := service.assignmentRepository.RevokePermission(context, roleID, permission.ID); err != nil {
		return fmt.Errorf("rbac_service_revoke_failed: %w", err)
	}

	return nil
}
