// Copyright (c) 2026 Campora. All rights reserved.

package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campora/campora/internal/platform/apperr"
	"github.com/campora/campora/pkg/uuid"
)

// rolePermissionGrants maps each system role to the permission names it
// receives at seed time. Admin is granted the whole catalog and is therefore
// not listed here.
var rolePermissionGrants = map[string][]string{
	RoleFaculty: {PermStudentsView, PermStudentsEdit},
}

// systemRoles are the roles shipped with every installation.
var systemRoles = []Role{
	{ID: SystemRoleAdminID, Name: RoleAdmin, Description: "Full administrative access", IsSystem: true},
	{ID: SystemRoleFacultyID, Name: RoleFaculty, Description: "Teaching staff", IsSystem: true},
	{ID: SystemRoleStudentID, Name: RoleStudent, Description: "Enrolled student", IsSystem: true},
	{ID: SystemRoleParentID, Name: RoleParent, Description: "Student guardian", IsSystem: true},
}

// Seeder installs the system roles, the permission catalog, and the default
// grants. Every step is idempotent, so the seeder runs on every startup.
type Seeder struct {
	roleRepository       RoleRepository
	permissionRepository PermissionRepository
	assignmentRepository AssignmentRepository
	logger               *slog.Logger
}

// NewSeeder constructs a [Seeder] with its repository dependencies.
func NewSeeder(
	roleRepo RoleRepository,
	permissionRepo PermissionRepository,
	assignmentRepo AssignmentRepository,
	logger *slog.Logger,
) *Seeder {
	return &Seeder{
		roleRepository:       roleRepo,
		permissionRepository: permissionRepo,
		assignmentRepository: assignmentRepo,
		logger:               logger,
	}
}

/*
Seed installs the RBAC baseline.

Description: Creates the four system roles under their fixed IDs, fills the
permission catalog, grants the full catalog to Admin, and applies the
per-role default grants. Existing rows are left untouched.

Parameters:
  - context: context.Context

Returns:
  - error: Storage failures
*/
func (seeder *Seeder) Seed(context context.Context) error {
	if err := seeder.seedRoles(context); err != nil {
		return err
	}

	if err := seeder.seedPermissions(context); err != nil {
		return err
	}

	return seeder.seedGrants(context)
}

func (seeder *Seeder) seedRoles(context context.Context) error {
	for _, role := range systemRoles {
		_, err := seeder.roleRepository.FindByID(context, role.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperr.NotFound("Role")) {
			return fmt.Errorf("rbac_seed_role_lookup_failed: %w", err)
		}

		created := role
		if err := seeder.roleRepository.Create(context, &created); err != nil {
			return fmt.Errorf("rbac_seed_role_create_failed: %w", err)
		}
		seeder.logger.Info("rbac_seed_role_created", slog.String("role", role.Name))
	}

	return nil
}

func (seeder *Seeder) seedPermissions(context context.Context) error {
	for _, resource := range CatalogResources {
		for _, action := range CatalogActions {
			permission := &Permission{
				ID:          uuid.New(),
				Name:        PermissionName(resource, action),
				Description: fmt.Sprintf("Allows %s on %s", action, resource),
				Resource:    resource,
				Action:      action,
			}

			if err := seeder.permissionRepository.Upsert(context, permission); err != nil {
				return fmt.Errorf("rbac_seed_permission_upsert_failed: %w", err)
			}
		}
	}

	return nil
}

func (seeder *Seeder) seedGrants(context context.Context) error {

	// Admin receives the entire catalog
	catalog, err := seeder.permissionRepository.List(context)
	if err != nil {
		return fmt.Errorf("rbac_seed_catalog_list_failed: %w", err)
	}

	for _, permission := range catalog {
		if err := seeder.assignmentRepository.GrantPermission(context, SystemRoleAdminID, permission.ID); err != nil {
			return fmt.Errorf("rbac_seed_admin_grant_failed: %w", err)
		}
	}

	// Per-role default grants
	for roleName, permissionNames := range rolePermissionGrants {
		role, err := seeder.roleRepository.FindByName(context, roleName)
		if err != nil {
			return fmt.Errorf("rbac_seed_grant_role_lookup_failed: %w", err)
		}

		for _, name := range permissionNames {
			permission, err := seeder.permissionRepository.FindByName(context, name)
			if err != nil {
				return fmt.Errorf("rbac_seed_grant_permission_lookup_failed: %w", err)
			}

			if err := seeder.assignmentRepository.GrantPermission(context, role.ID, permission.ID); err != nil {
				return fmt.Errorf("rbac_seed_grant_failed: %w", err)
			}
		}
	}

	return nil
}
