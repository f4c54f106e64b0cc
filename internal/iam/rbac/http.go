// Copyright (c) 2026 Campora. All rights reserved.

/*
HTTP delivery layer for role and permission management.

All endpoints are administrative and guarded by permission checks resolved
against the store on every request, so revoked grants take effect
immediately.
*/
package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campora/campora/internal/platform/middleware"
	requestutil "github.com/campora/campora/internal/platform/request"
	"github.com/campora/campora/internal/platform/respond"
	"github.com/campora/campora/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements RBAC management HTTP endpoints.
type Handler struct {
	rbacService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{rbacService: service}
}

// Routes returns a [chi.Router] configured with RBAC management routes.
//
// Mount under an Authenticate'd router; every group below enforces its own
// permission.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(handler.rbacService, PermRolesView))
		r.Get("/roles", handler.listRoles)
		r.Get("/roles/{roleID}", handler.getRole)
		r.Get("/permissions", handler.listPermissions)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(handler.rbacService, PermRolesCreate))
		r.Post("/roles", handler.createRole)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(handler.rbacService, PermRolesEdit))
		r.Put("/roles/{roleID}", handler.updateRole)
		r.Post("/roles/{roleID}/permissions", handler.grantPermission)
		r.Delete("/roles/{roleID}/permissions/{permissionName}", handler.revokePermission)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(handler.rbacService, PermRolesDelete))
		r.Delete("/roles/{roleID}", handler.deleteRole)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(handler.rbacService, PermUsersView))
		r.Get("/identities/{identityID}/roles", handler.identityRoles)
		r.Get("/identities/{identityID}/permissions", handler.identityPermissions)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(handler.rbacService, PermUsersEdit))
		r.Post("/identities/{identityID}/roles", handler.assignRole)
		r.Delete("/identities/{identityID}/roles/{roleID}", handler.removeRole)
	})

	return router
}

// # Request Payloads

type roleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type grantRequest struct {
	Permission string `json:"permission"`
}

type assignRoleRequest struct {
	RoleID string `json:"role_id"`
}

/*
ListRoles returns every role in the system.

GET /api/v1/rbac/roles

Response:
  - 200: []Role
*/
func (handler *Handler) listRoles(writer http.ResponseWriter, request *http.Request) {
	roles, err := handler.rbacService.ListRoles(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, roles)
}

/*
GetRole returns a role together with its granted permissions.

GET /api/v1/rbac/roles/{roleID}

Response:
  - 200: Role with permissions
  - 404: NOT_FOUND
*/
func (handler *Handler) getRole(writer http.ResponseWriter, request *http.Request) {
	roleID := requestutil.Param(request, "roleID")

	role, permissions, err := handler.rbacService.GetRole(request.Context(), roleID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"role":           role,
		FieldPermissions: permissions,
	})
}

/*
CreateRole registers a new custom role.

POST /api/v1/rbac/roles

Request:
  - Body: roleRequest (Name, Description)

Response:
  - 201: Role
  - 409: CONFLICT: Name already taken
*/
func (handler *Handler) createRole(writer http.ResponseWriter, request *http.Request) {
	var input roleRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).MaxLen(FieldName, input.Name, 64)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	role, err := handler.rbacService.CreateRole(request.Context(), RoleInput{
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, role)
}

/*
UpdateRole renames a role or updates its description.

PUT /api/v1/rbac/roles/{roleID}

Response:
  - 200: Role
  - 403: FORBIDDEN: System role rename rejected
*/
func (handler *Handler) updateRole(writer http.ResponseWriter, request *http.Request) {
	roleID := requestutil.Param(request, "roleID")

	var input roleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).MaxLen(FieldName, input.Name, 64)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	role, err := handler.rbacService.UpdateRole(request.Context(), roleID, RoleInput{
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, role)
}

/*
DeleteRole removes a custom role.

DELETE /api/v1/rbac/roles/{roleID}

Response:
  - 204: No Content
  - 403: FORBIDDEN: System role
*/
func (handler *Handler) deleteRole(writer http.ResponseWriter, request *http.Request) {
	roleID := requestutil.Param(request, "roleID")

	if err := handler.rbacService.DeleteRole(request.Context(), roleID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
ListPermissions returns the full permission catalog.

GET /api/v1/rbac/permissions

Response:
  - 200: []Permission
*/
func (handler *Handler) listPermissions(writer http.ResponseWriter, request *http.Request) {
	permissions, err := handler.rbacService.ListPermissions(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if resource := request.URL.Query().Get("resource"); resource != "" {
		filtered := make([]Permission, 0, len(permissions))
		for _, permission := range permissions {
			if permission.Resource == resource {
				filtered = append(filtered, permission)
			}
		}
		permissions = filtered
	}

	respond.OK(writer, permissions)
}

/*
GrantPermission grants a named permission to a role.

POST /api/v1/rbac/roles/{roleID}/permissions

Request:
  - Body: grantRequest (Permission)

Response:
  - 200: Success
  - 404: NOT_FOUND: Unknown role or permission
*/
func (handler *Handler) grantPermission(writer http.ResponseWriter, request *http.Request) {
	roleID := requestutil.Param(request, "roleID")

	var input grantRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.Permission == "" {
		respond.Error(writer, request, validate.RequiredError("permission", "is required"))
		return
	}

	if err := handler.rbacService.GrantPermission(request.Context(), roleID, input.Permission); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{FieldMessage: "Permission granted"})
}

/*
RevokePermission revokes a named permission from a role.

DELETE /api/v1/rbac/roles/{roleID}/permissions/{permissionName}

Response:
  - 204: No Content
  - 404: NOT_FOUND: Unknown role or permission
*/
func (handler *Handler) revokePermission(writer http.ResponseWriter, request *http.Request) {
	roleID := requestutil.Param(request, "roleID")
	permissionName := requestutil.Param(request, "permissionName")

	if err := handler.rbacService.RevokePermission(request.Context(), roleID, permissionName); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
IdentityRoles returns the roles assigned to an identity.

GET /api/v1/rbac/identities/{identityID}/roles

Response:
  - 200: []Role
*/
func (handler *Handler) identityRoles(writer http.ResponseWriter, request *http.Request) {
	identityID := requestutil.Param(request, "identityID")

	roles, err := handler.rbacService.RolesFor(request.Context(), identityID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, roles)
}

/*
IdentityPermissions returns the effective permission union for an identity.

GET /api/v1/rbac/identities/{identityID}/permissions

Response:
  - 200: []Permission
*/
func (handler *Handler) identityPermissions(writer http.ResponseWriter, request *http.Request) {
	identityID := requestutil.Param(request, "identityID")

	permissions, err := handler.rbacService.EffectivePermissions(request.Context(), identityID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, permissions)
}

/*
AssignRole links an identity to a role.

POST /api/v1/rbac/identities/{identityID}/roles

Request:
  - Body: assignRoleRequest (RoleID)

Response:
  - 200: Success
  - 404: NOT_FOUND: Unknown role
*/
func (handler *Handler) assignRole(writer http.ResponseWriter, request *http.Request) {
	identityID := requestutil.Param(request, "identityID")

	var input assignRoleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldRoleID, input.RoleID).UUID(FieldRoleID, input.RoleID)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.rbacService.AssignRole(request.Context(), identityID, input.RoleID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{FieldMessage: "Role assigned"})
}

/*
RemoveRole unlinks an identity from a role.

DELETE /api/v1/rbac/identities/{identityID}/roles/{roleID}

Response:
  - 204: No Content
*/
func (handler *Handler) removeRole(writer http.ResponseWriter, request *http.Request) {
	identityID := requestutil.Param(request, "identityID")
	roleID := requestutil.Param(request, "roleID")

	if err := handler.rbacService.RemoveRole(request.Context(), identityID, roleID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
