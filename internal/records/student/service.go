// Copyright (c) 2026 Campora. All rights reserved.

package student

import (
	"context"
	"log/slog"
	"time"

	"github.com/campora/campora/internal/iam/auth"
	"github.com/campora/campora/internal/platform/validate"
	"github.com/campora/campora/pkg/pointer"
	"github.com/campora/campora/pkg/uuid"
)

// admissionNumberPrefix plus a second-resolution timestamp forms the
// human-facing admission number, e.g. ADM20260829143005.
const admissionNumberPrefix = "ADM"

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

// NewAdmissionNumber generates a timestamp-based admission number.
func NewAdmissionNumber() string {
	return admissionNumberPrefix + time.Now().Format("20060102150405")
}

// RegisterProfile provisions the student record for a freshly registered
// identity. It satisfies the auth service's ProfileRegistrar contract.
func (service *Service) RegisterProfile(context context.Context, identityID string, profile auth.ProfileInput) error {
	student := &Student{
		ID:              uuid.New(),
		IdentityID:      identityID,
		AdmissionNumber: NewAdmissionNumber(),
		FirstName:       profile.FirstName,
		LastName:        profile.LastName,
		Gender:          profile.Gender,
		Phone:           profile.Phone,
		Address:         profile.Address,
		GuardianName:    profile.GuardianName,
		GuardianPhone:   profile.GuardianPhone,
		Grade:           profile.Grade,
		AdmissionDate:   time.Now(),
	}

	if profile.DateOfBirth != "" {
		if parsed, err := time.Parse("2006-01-02", profile.DateOfBirth); err == nil {
			student.DateOfBirth = pointer.To(parsed)
		}
	}

	if err := service.repo.Create(context, student); err != nil {
		return err
	}

	service.logger.Info("student_profile_registered",
		slog.String("student_id", student.ID),
		slog.String("admission_number", student.AdmissionNumber),
	)
	return nil
}

func (service *Service) ListStudents(context context.Context, filter Filter, limit, offset int) ([]*Student, int, error) {
	return service.repo.List(context, filter, limit, offset)
}

func (service *Service) GetStudent(context context.Context, id string) (*Student, error) {
	return service.repo.FindByID(context, id)
}

func (service *Service) GetStudentByIdentity(context context.Context, identityID string) (*Student, error) {
	return service.repo.FindByIdentityID(context, identityID)
}

func (service *Service) UpdateStudent(context context.Context, id string, student *Student) error {
	existing, err := service.repo.FindByID(context, id)
	if err != nil {
		return err
	}

	validator := &validate.Validator{}
	validator.Required(FieldFirstName, student.FirstName).MaxLen(FieldFirstName, student.FirstName, 100).
		Required(FieldLastName, student.LastName).MaxLen(FieldLastName, student.LastName, 100).
		Phone(FieldPhone, student.Phone)

	if err := validator.Err(); err != nil {
		return err
	}

	// Identity binding and admission number are immutable
	student.ID = existing.ID
	student.IdentityID = existing.IdentityID
	student.AdmissionNumber = existing.AdmissionNumber

	if err := service.repo.Update(context, student); err != nil {
		return err
	}

	service.logger.Info("student_updated", slog.String("student_id", student.ID))
	return nil
}

func (service *Service) DeleteStudent(context context.Context, id string) error {
	if _, err := service.repo.FindByID(context, id); err != nil {
		return err
	}

	if err := service.repo.SoftDelete(context, id); err != nil {
		return err
	}

	service.logger.Warn("student_deleted", slog.String("student_id", id))
	return nil
}
