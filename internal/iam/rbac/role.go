// Copyright (c) 2026 Campora. All rights reserved.

/*
Package rbac implements role-based access control for Campora.

It defines the role and permission catalog, resolves an identity's effective
permissions through its role assignments, and exposes the management surface
for administrators.

# Model

Identities hold roles; roles hold permissions. An identity's effective
permission set is the union over all of its roles. Permission names follow
the "<resource>.<action>" convention (e.g. "students.edit").
*/
package rbac

import "time"

// # System Roles
//
// The four system roles ship with fixed identifiers so that seeding is
// idempotent across environments and role references in fixtures and
// integrations stay stable. System roles cannot be renamed or deleted.

const (
	RoleAdmin   = "Admin"
	RoleFaculty = "Faculty"
	RoleStudent = "Student"
	RoleParent  = "Parent"
)

const (
	SystemRoleAdminID   = "11111111-1111-1111-1111-111111111111"
	SystemRoleFacultyID = "22222222-2222-2222-2222-222222222222"
	SystemRoleStudentID = "33333333-3333-3333-3333-333333333333"
	SystemRoleParentID  = "44444444-4444-4444-4444-444444444444"
)

// # Domain Entities

// Role is a named bundle of permissions.
type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsSystem    bool      `json:"is_system"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Permission is a single named capability over a resource.
type Permission struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Resource    string    `json:"resource"`
	Action      string    `json:"action"`
	CreatedAt   time.Time `json:"created_at"`
}

// # Permission Catalog

// Resources and actions covered by the built-in catalog.
const (
	ResourceUsers    = "users"
	ResourceStudents = "students"
	ResourceFaculty  = "faculty"
	ResourceRoles    = "roles"

	ActionView   = "view"
	ActionCreate = "create"
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// Commonly guarded permission names.
const (
	PermUsersView      = "users.view"
	PermUsersCreate    = "users.create"
	PermUsersEdit      = "users.edit"
	PermUsersDelete    = "users.delete"
	PermStudentsView   = "students.view"
	PermStudentsCreate = "students.create"
	PermStudentsEdit   = "students.edit"
	PermStudentsDelete = "students.delete"
	PermFacultyView    = "faculty.view"
	PermFacultyCreate  = "faculty.create"
	PermFacultyEdit    = "faculty.edit"
	PermFacultyDelete  = "faculty.delete"
	PermRolesView      = "roles.view"
	PermRolesCreate    = "roles.create"
	PermRolesEdit      = "roles.edit"
	PermRolesDelete    = "roles.delete"
)

// CatalogResources enumerates the resources seeded into the permission catalog.
var CatalogResources = []string{ResourceUsers, ResourceStudents, ResourceFaculty, ResourceRoles}

// CatalogActions enumerates the actions seeded per resource.
var CatalogActions = []string{ActionView, ActionCreate, ActionEdit, ActionDelete}

// PermissionName composes the canonical "<resource>.<action>" name.
func PermissionName(resource, action string) string {
	return resource + "." + action
}

// # Field Identifiers

const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldRoleID      = "role_id"
	FieldIdentityID  = "identity_id"
	FieldPermissions = "permissions"
	FieldMessage     = "message"
)
