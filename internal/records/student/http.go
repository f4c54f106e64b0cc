// Copyright (c) 2026 Campora. All rights reserved.

package student

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
	// A student may always read their own record regardless of granted permissions.
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.getOwnStudent)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(handler.checker, rbac.PermStudentsView))
		r.Get("/", handler.listStudents)
		r.Get("/{id}", handler.getStudent)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(handler.checker, rbac.PermStudentsEdit))
		r.Put("/{id}", handler.updateStudent)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(handler.checker, rbac.PermStudentsDelete))
		r.Delete("/{id}", handler.deleteStudent)
	})
}

func (handler *Handler) listStudents(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter := Filter{
		Query: request.URL.Query().Get("q"),
		Grade: request.URL.Query().Get("grade"),
	}

	students, total, err := handler.service.ListStudents(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, students, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getOwnStudent(writer http.ResponseWriter, request *http.Request) {
	identityID, err := requestutil.RequiredIdentityID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	student, err := handler.service.GetStudentByIdentity(request.Context(), identityID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, student)
}

func (handler *Handler) getStudent(writer http.ResponseWriter, request *http.Request) {
	studentID := requestutil.Param(request, "id")

	student, err := handler.service.GetStudent(request.Context(), studentID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, student)
}

func (handler *Handler) updateStudent(writer http.ResponseWriter, request *http.Request) {
	studentID := requestutil.Param(request, "id")

	var input Student
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.UpdateStudent(request.Context(), studentID, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, input)
}

func (handler *Handler) deleteStudent(writer http.ResponseWriter, request *http.Request) {
	studentID := requestutil.Param(request, "id")

	if err := handler.service.DeleteStudent(request.Context(), studentID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
