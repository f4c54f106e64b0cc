// Copyright (c) 2026 Campora. All rights reserved.

package faculty

import (
	"context"
	"log/slog"
	"time"

	"github.com/campora/campora/internal/iam/auth"
	"github.com/campora/campora/internal/platform/validate"
	"github.com/campora/campora/pkg/pointer"
	"github.com/campora/campora/pkg/uuid"
)

// employeeNumberPrefix plus a second-resolution timestamp forms the
// human-facing employee number, e.g. EMP20260829143005.
const employeeNumberPrefix = "EMP"

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// NewEmployeeNumber generates a timestamp-based employee number.
func NewEmployeeNumber() string {
	return employeeNumberPrefix + time.Now().Format("20060102150405")
}

// RegisterProfile provisions the faculty record for a freshly registered
// identity. It satisfies the auth service's ProfileRegistrar contract.
func (service *Service) RegisterProfile(context context.Context, identityID string, profile auth.ProfileInput) error {
	faculty := &Faculty{
		ID:             uuid.New(),
		IdentityID:     identityID,
		EmployeeNumber: NewEmployeeNumber(),
		FirstName:      profile.FirstName,
		LastName:       profile.LastName,
		Gender:         profile.Gender,
		Phone:          profile.Phone,
		Address:        profile.Address,
		Department:     profile.Department,
		Designation:    profile.Designation,
		JoiningDate:    time.Now(),
	}

	if profile.DateOfBirth != "" {
		if parsed, err := time.Parse("2006-01-02", profile.DateOfBirth); err == nil {
			faculty.DateOfBirth = pointer.To(parsed)
		}
	}

	if err := service.repo.Create(context, faculty); err != nil {
		return err
	}

	service.logger.Info("faculty_profile_registered",
		slog.String("faculty_id", faculty.ID),
		slog.String("employee_number", faculty.EmployeeNumber),
	)
	return nil
}

func (service *Service) ListFaculty(context context.Context, filter Filter, limit, offset int) ([]*Faculty, int, error) {
	return service.repo.List(context, filter, limit, offset)
}

func (service *Service) GetFaculty(context context.Context, id string) (*Faculty, error) {
	return service.repo.FindByID(context, id)
}

func (service *Service) GetFacultyByIdentity(context context.Context, identityID string) (*Faculty, error) {
	return service.repo.FindByIdentityID(context, identityID)
}

func (service *Service) UpdateFaculty(context context.Context, id string, faculty *Faculty) error {
	existing, err := service.repo.FindByID(context, id)
	if err != nil {
		return err
	}

	validator := &validate.Validator{}
	validator.Required(FieldFirstName, faculty.FirstName).MaxLen(FieldFirstName, faculty.FirstName, 100).
		Required(FieldLastName, faculty.LastName).MaxLen(FieldLastName, faculty.LastName, 100).
		MaxLen(FieldDepartment, faculty.Department, 100).
		Phone(FieldPhone, faculty.Phone)

	if err := validator.Err(); err != nil {
		return err
	}

	// Identity binding and employee number are immutable
	faculty.ID = existing.ID
	faculty.IdentityID = existing.IdentityID
	faculty.EmployeeNumber = existing.EmployeeNumber

	if err := service.repo.Update(context, faculty); err != nil {
		return err
	}

	service.logger.Info("faculty_updated", slog.String("faculty_id", faculty.ID))
	return nil
}

func (service *Service) DeleteFaculty(context context.Context, id string) error {
	if _, err := service.repo.FindByID(context, id); err != nil {
		return err
	}

	if err := service.repo.SoftDelete(context, id); err != nil {
		return err
	}

	service.logger.Warn("faculty_deleted", slog.String("faculty_id", id))
	return nil
}
