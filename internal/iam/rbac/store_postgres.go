// Copyright (c) 2026 Campora. All rights reserved.

// PostgreSQL implementations of the rbac domain repositories.
package rbac

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campora/campora/internal/platform/apperr"
	"github.com/campora/campora/internal/platform/dberr"
)

// # Role Repository

// PostgresRoleRepository implements the RoleRepository interface using pgx.
type PostgresRoleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository creates a new PostgreSQL implementation of the RoleRepository.
func NewRoleRepository(pool *pgxpool.Pool) *PostgresRoleRepository {
	return &PostgresRoleRepository{pool: pool}
}

const roleColumns = `id, name, description, issystem, createdat, updatedat`

func scanRole(row pgx.Row) (*Role, error) {
	role := &Role{}
	err := row.Scan(
		&role.ID,
		&role.Name,
		&role.Description,
		&role.IsSystem,
		&role.CreatedAt,
		&role.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return role, nil
}

/*
FindByID retrieves a role by its unique ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Role: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresRoleRepository) FindByID(context context.Context, id string) (*Role, error) {
	const query = `SELECT ` + roleColumns + ` FROM iam.role WHERE id = $1`

	role, err := scanRole(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Role")
		}
		return nil, fmt.Errorf("postgres_role_repo_find_by_id_failed: %w", err)
	}

	return role, nil
}

/*
FindByName retrieves a role by name, case-insensitively.

Parameters:
  - context: context.Context
  - name: string

Returns:
  - *Role: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresRoleRepository) FindByName(context context.Context, name string) (*Role, error) {
	const query = `SELECT ` + roleColumns + ` FROM iam.role WHERE lower(name) = lower($1)`

	role, err := scanRole(repository.pool.QueryRow(context, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Role")
		}
		return nil, fmt.Errorf("postgres_role_repo_find_by_name_failed: %w", err)
	}

	return role, nil
}

/*
List returns all roles ordered by name.

Parameters:
  - context: context.Context

Returns:
  - []Role: All roles
  - error: Retrieval failures
*/
func (repository *PostgresRoleRepository) List(context context.Context) ([]Role, error) {
	const query = `SELECT ` + roleColumns + ` FROM iam.role ORDER BY name`

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_role_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_role_repo_list_scan_failed: %w", err)
		}
		roles = append(roles, *role)
	}

	return roles, rows.Err()
}

/*
Create persists a new role.

Parameters:
  - context: context.Context
  - role: *Role

Returns:
  - error: apperr.Conflict on duplicate name, or execution errors
*/
func (repository *PostgresRoleRepository) Create(context context.Context, role *Role) error {
	const query = `
		INSERT INTO iam.role (id, name, description, issystem, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, $6)`

	now := time.Now()
	if role.CreatedAt.IsZero() {
		role.CreatedAt = now
	}
	role.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		role.ID, role.Name, role.Description, role.IsSystem, role.CreatedAt, role.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Role name is already taken")
		}
		return fmt.Errorf("postgres_role_repo_create_failed: %w", err)
	}

	return nil
}

/*
Update persists changes to a role's name and description.

Parameters:
  - context: context.Context
  - role: *Role

Returns:
  - error: apperr.Conflict on duplicate name, or execution errors
*/
func (repository *PostgresRoleRepository) Update(context context.Context, role *Role) error {
	const query = `
		UPDATE iam.role
		SET name = $2, description = $3, updatedat = $4
		WHERE id = $1`

	role.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query, role.ID, role.Name, role.Description, role.UpdatedAt)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Role name is already taken")
		}
		return fmt.Errorf("postgres_role_repo_update_failed: %w", err)
	}

	return nil
}

/*
Delete removes a role. Assignments and grants cascade at the schema level.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresRoleRepository) Delete(context context.Context, id string) error {
	const query = "DELETE FROM iam.role WHERE id = $1"
	_, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_role_repo_delete_failed: %w", err)
	}
	return nil
}

// # Permission Repository

// PostgresPermissionRepository implements the PermissionRepository interface.
type PostgresPermissionRepository struct {
	pool *pgxpool.Pool
}

// NewPermissionRepository creates a new PostgreSQL implementation of PermissionRepository.
func NewPermissionRepository(pool *pgxpool.Pool) *PostgresPermissionRepository {
	return &PostgresPermissionRepository{pool: pool}
}

const permissionColumns = `id, name, description, resource, action, createdat`

func scanPermission(row pgx.Row) (*Permission, error) {
	permission := &Permission{}
	err := row.Scan(
		&permission.ID,
		&permission.Name,
		&permission.Description,
		&permission.Resource,
		&permission.Action,
		&permission.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return permission, nil
}

/*
List returns the full permission catalog ordered by name.

Parameters:
  - context: context.Context

Returns:
  - []Permission: Catalog entries
  - error: Retrieval failures
*/
func (repository *PostgresPermissionRepository) List(context context.Context) ([]Permission, error) {
	const query = `SELECT ` + permissionColumns + ` FROM iam.permission ORDER BY name`

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_permission_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var permissions []Permission
	for rows.Next() {
		permission, err := scanPermission(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_permission_repo_list_scan_failed: %w", err)
		}
		permissions = append(permissions, *permission)
	}

	return permissions, rows.Err()
}

/*
FindByName returns the permission with the given name.

Parameters:
  - context: context.Context
  - name: string

Returns:
  - *Permission: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresPermissionRepository) FindByName(context context.Context, name string) (*Permission, error) {
	const query = `SELECT ` + permissionColumns + ` FROM iam.permission WHERE name = $1`

	permission, err := scanPermission(repository.pool.QueryRow(context, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Permission")
		}
		return nil, fmt.Errorf("postgres_permission_repo_find_by_name_failed: %w", err)
	}

	return permission, nil
}

/*
Upsert inserts the permission if its name is not yet present.

Description: Used by the idempotent seed; existing rows are left untouched.

Parameters:
  - context: context.Context
  - permission: *Permission

Returns:
  - error: Execution errors
*/
func (repository *PostgresPermissionRepository) Upsert(context context.Context, permission *Permission) error {
	const query = `
		INSERT INTO iam.permission (id, name, description, resource, action, createdat)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO NOTHING`

	if permission.CreatedAt.IsZero() {
		permission.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(context, query,
		permission.ID, permission.Name, permission.Description,
		permission.Resource, permission.Action, permission.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_permission_repo_upsert_failed: %w", err)
	}

	return nil
}

// # Assignment Repository

// PostgresAssignmentRepository implements the AssignmentRepository interface.
type PostgresAssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository creates a new PostgreSQL implementation of AssignmentRepository.
func NewAssignmentRepository(pool *pgxpool.Pool) *PostgresAssignmentRepository {
	return &PostgresAssignmentRepository{pool: pool}
}

/*
AssignRole links an identity to a role.

Description: ON CONFLICT DO NOTHING makes repeated assignment a no-op.

Parameters:
  - context: context.Context
  - identityID: string
  - roleID: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresAssignmentRepository) AssignRole(context context.Context, identityID, roleID string) error {
	const query = `
		INSERT INTO iam.roleassignment (id, identityid, roleid, createdat)
		VALUES (gen_random_uuid(), $1, $2, now())
		ON CONFLICT (identityid, roleid) DO NOTHING`

	_, err := repository.pool.Exec(context, query, identityID, roleID)
	if err != nil {
		return fmt.Errorf("postgres_assignment_repo_assign_role_failed: %w", err)
	}
	return nil
}

/*
RemoveRole unlinks an identity from a role.

Parameters:
  - context: context.Context
  - identityID: string
  - roleID: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresAssignmentRepository) RemoveRole(context context.Context, identityID, roleID string) error {
	const query = "DELETE FROM iam.roleassignment WHERE identityid = $1 AND roleid = $2"
	_, err := repository.pool.Exec(context, query, identityID, roleID)
	if err != nil {
		return fmt.Errorf("postgres_assignment_repo_remove_role_failed: %w", err)
	}
	return nil
}

/*
RolesFor returns the roles assigned to the identity.

Parameters:
  - context: context.Context
  - identityID: string

Returns:
  - []Role: Assigned roles ordered by name
  - error: Retrieval failures
*/
func (repository *PostgresAssignmentRepository) RolesFor(context context.Context, identityID string) ([]Role, error) {
	const query = `
		SELECT r.id, r.name, r.description, r.issystem, r.createdat, r.updatedat
		FROM iam.role r
		JOIN iam.roleassignment a ON a.roleid = r.id
		WHERE a.identityid = $1
		ORDER BY r.name`

	rows, err := repository.pool.Query(context, query, identityID)
	if err != nil {
		return nil, fmt.Errorf("postgres_assignment_repo_roles_for_failed: %w", err)
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_assignment_repo_roles_for_scan_failed: %w", err)
		}
		roles = append(roles, *role)
	}

	return roles, rows.Err()
}

/*
GrantPermission links a role to a permission.

Parameters:
  - context: context.Context
  - roleID: string
  - permissionID: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresAssignmentRepository) GrantPermission(context context.Context, roleID, permissionID string) error {
	const query = `
		INSERT INTO iam.rolepermission (id, roleid, permissionid, createdat)
		VALUES (gen_random_uuid(), $1, $2, now())
		ON CONFLICT (roleid, permissionid) DO NOTHING`

	_, err := repository.pool.Exec(context, query, roleID, permissionID)
	if err != nil {
		return fmt.Errorf("postgres_assignment_repo_grant_permission_failed: %w", err)
	}
	return nil
}

/*
RevokePermission unlinks a role from a permission.

Parameters:
  - context: context.Context
  - roleID: string
  - permissionID: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresAssignmentRepository) RevokePermission(context context.Context, roleID, permissionID string) error {
	const query = "DELETE FROM iam.rolepermission WHERE roleid = $1 AND permissionid = $2"
	_, err := repository.pool.Exec(context, query, roleID, permissionID)
	if err != nil {
		return fmt.Errorf("postgres_assignment_repo_revoke_permission_failed: %w", err)
	}
	return nil
}

/*
PermissionsForRole returns the permissions granted to a role.

Parameters:
  - context: context.Context
  - roleID: string

Returns:
  - []Permission: Granted permissions ordered by name
  - error: Retrieval failures
*/
func (repository *PostgresAssignmentRepository) PermissionsForRole(context context.Context, roleID string) ([]Permission, error) {
	const query = `
		SELECT p.id, p.name, p.description, p.resource, p.action, p.createdat
		FROM iam.permission p
		JOIN iam.rolepermission g ON g.permissionid = p.id
		WHERE g.roleid = $1
		ORDER BY p.name`

	rows, err := repository.pool.Query(context, query, roleID)
	if err != nil {
		return nil, fmt.Errorf("postgres_assignment_repo_permissions_for_role_failed: %w", err)
	}
	defer rows.Close()

	var permissions []Permission
	for rows.Next() {
		permission, err := scanPermission(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_assignment_repo_permissions_for_role_scan_failed: %w", err)
		}
		permissions = append(permissions, *permission)
	}

	return permissions, rows.Err()
}

/*
PermissionsForIdentity returns the deduplicated union of permissions across
all of the identity's roles.

Parameters:
  - context: context.Context
  - identityID: string

Returns:
  - []Permission: Effective permissions ordered by name
  - error: Retrieval failures
*/
func (repository *PostgresAssignmentRepository) PermissionsForIdentity(context context.Context, identityID string) ([]Permission, error) {
	const query = `
		SELECT DISTINCT p.id, p.name, p.description, p.resource, p.action, p.createdat
		FROM iam.permission p
		JOIN iam.rolepermission g ON g.permissionid = p.id
		JOIN iam.roleassignment a ON a.roleid = g.roleid
		WHERE a.identityid = $1
		ORDER BY p.name`

	rows, err := repository.pool.Query(context, query, identityID)
	if err != nil {
		return nil, fmt.Errorf("postgres_assignment_repo_permissions_for_identity_failed: %w", err)
	}
	defer rows.Close()

	var permissions []Permission
	for rows.Next() {
		permission, err := scanPermission(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_assignment_repo_permissions_for_identity_scan_failed: %w", err)
		}
		permissions = append(permissions, *permission)
	}

	return permissions, rows.Err()
}
