// Copyright (c) 2026 Campora. All rights reserved.

package rbac

import (
	"context"
)

// # Role Data Access

// RoleRepository defines the data access contract for roles.
type RoleRepository interface {

	/*
		FindByID returns the role with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Role: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Role, error)

	/*
		FindByName returns the role with the given name (case-insensitive).

		Parameters:
		  - context: context.Context
		  - name: string

		Returns:
		  - *Role: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByName(context context.Context, name string) (*Role, error)

	/*
		List returns all roles ordered by name.

		Parameters:
		  - context: context.Context

		Returns:
		  - []Role: All roles
		  - error: Retrieval failures
	*/
	List(context context.Context) ([]Role, error)

	/*
		Create persists a new role.

		Parameters:
		  - context: context.Context
		  - role: *Role

		Returns:
		  - error: Conflict on duplicate name, or persistence failures
	*/
	Create(context context.Context, role *Role) error

	/*
		Update persists changes to a role's name and description.

		Parameters:
		  - context: context.Context
		  - role: *Role

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, role *Role) error

	/*
		Delete removes a role and its grants.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, id string) error
}

// # Permission Data Access

// PermissionRepository defines the data access contract for the permission catalog.
type PermissionRepository interface {

	/*
		List returns the full permission catalog ordered by name.

		Parameters:
		  - context: context.Context

		Returns:
		  - []Permission: Catalog entries
		  - error: Retrieval failures
	*/
	List(context context.Context) ([]Permission, error)

	/*
		FindByName returns the permission with the given name.

		Parameters:
		  - context: context.Context
		  - name: string

		Returns:
		  - *Permission: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByName(context context.Context, name string) (*Permission, error)

	/*
		Upsert inserts the permission if its name is not yet present.

		Parameters:
		  - context: context.Context
		  - permission: *Permission

		Returns:
		  - error: Persistence failures
	*/
	Upsert(context context.Context, permission *Permission) error
}

// # Assignment & Grant Data Access

// AssignmentRepository manages identity-to-role and role-to-permission links.
type AssignmentRepository interface {

	/*
		AssignRole links an identity to a role. Assigning an already-held
		role is a no-op.

		Parameters:
		  - context: context.Context
		  - identityID: string
		  - roleID: string

		Returns:
		  - error: Persistence failures
	*/
	AssignRole(context context.Context, identityID, roleID string) error

	/*
		RemoveRole unlinks an identity from a role.

		Parameters:
		  - context: context.Context
		  - identityID: string
		  - roleID: string

		Returns:
		  - error: Persistence failures
	*/
	RemoveRole(context context.Context, identityID, roleID string) error

	/*
		RolesFor returns the roles assigned to the identity.

		Parameters:
		  - context: context.Context
		  - identityID: string

		Returns:
		  - []Role: Assigned roles
		  - error: Retrieval failures
	*/
	RolesFor(context context.Context, identityID string) ([]Role, error)

	/*
		GrantPermission links a role to a permission. Granting an
		already-held permission is a no-op.

		Parameters:
		  - context: context.Context
		  - roleID: string
		  - permissionID: string

		Returns:
		  - error: Persistence failures
	*/
	GrantPermission(context context.Context, roleID, permissionID string) error

	/*
		RevokePermission unlinks a role from a permission.

		Parameters:
		  - context: context.Context
		  - roleID: string
		  - permissionID: string

		Returns:
		  - error: Persistence failures
	*/
	RevokePermission(context context.Context, roleID, permissionID string) error

	/*
		PermissionsForRole returns the permissions granted to a role.

		Parameters:
		  - context: context.Context
		  - roleID: string

		Returns:
		  - []Permission: Granted permissions
		  - error: Retrieval failures
	*/
	PermissionsForRole(context context.Context, roleID string) ([]Permission, error)

	/*
		PermissionsForIdentity returns the union of permissions across all of
		the identity's roles, deduplicated, ordered by name.

		Parameters:
		  - context: context.Context
		  - identityID: string

		Returns:
		  - []Permission: Effective permissions
		  - error: Retrieval failures
	*/
	PermissionsForIdentity(context context.Context, identityID string) ([]Permission, error)
}
