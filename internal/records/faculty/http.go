// Copyright (c) 2026 Campora. All rights reserved.

package faculty

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campora/campora/internal/iam/rbac"
	"github.com/campora/campora/internal/platform/middleware"
	requestutil "github.com/campora/campora/internal/platform/request"
	"github.com/campora/campora/internal/platform/respond"
	"github.com/campora/campora/pkg/pagination"
)

type Handler struct {
	service *Service
	checker middleware.PermissionChecker
}

func NewHandler(service *Service, checker middleware.PermissionChecker) *Handler {
	return &Handler{service: service, checker: checker}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	// A faculty member may always read their own record regardless of granted permissions.
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.getOwnFaculty)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(handler.checker, rbac.PermFacultyView))
		r.Get("/", handler.listFaculty)
		r.Get("/{id}", handler.getFaculty)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(handler.checker, rbac.PermFacultyEdit))
		r.Put("/{id}", handler.updateFaculty)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(handler.checker, rbac.PermFacultyDelete))
		r.Delete("/{id}", handler.deleteFaculty)
	})
}

func (handler *Handler) listFaculty(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter := Filter{
		Query:      request.URL.Query().Get("q"),
		Department: request.URL.Query().Get("department"),
	}

	members, total, err := handler.service.ListFaculty(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, members, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getOwnFaculty(writer http.ResponseWriter, request *http.Request) {
	identityID, err := requestutil.RequiredIdentityID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	faculty, err := handler.service.GetFacultyByIdentity(request.Context(), identityID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, faculty)
}

func (handler *Handler) getFaculty(writer http.ResponseWriter, request *http.Request) {
	facultyID := requestutil.Param(request, "id")

	faculty, err := handler.service.GetFaculty(request.Context(), facultyID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, faculty)
}

func (handler *Handler) updateFaculty(writer http.ResponseWriter, request *http.Request) {
	facultyID := requestutil.Param(request, "id")

	var input Faculty
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.UpdateFaculty(request.Context(), facultyID, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, input)
}

func (handler *Handler) deleteFaculty(writer http.ResponseWriter, request *http.Request) {
	facultyID := requestutil.Param(request, "id")

	if err := handler.service.DeleteFaculty(request.Context(), facultyID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
