// Copyright (c) 2026 Campora. All rights reserved.

package student_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campora/campora/internal/iam/auth"
	"github.com/campora/campora/internal/platform/apperr"
	"github.com/campora/campora/internal/records/student"
)

type fakeRepo struct {
	mu       sync.Mutex
	students map[string]*student.Student
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{students: make(map[string]*student.Student)}
}

func (repo *fakeRepo) List(_ context.Context, filter student.Filter, limit, offset int) ([]*student.Student, int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	var matched []*student.Student
	for _, record := range repo.students {
		if filter.Grade != "" && record.Grade != filter.Grade {
			continue
		}
		matched = append(matched, record)
	}
	total := len(matched)
	if offset > len(matched) {
		offset = len(matched)
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (repo *fakeRepo) FindByID(_ context.Context, id string) (*student.Student, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	record, ok := repo.students[id]
	if !ok {
		return nil, apperr.NotFound("Student")
	}
	copied := *record
	return &copied, nil
}

func (repo *fakeRepo) FindByIdentityID(_ context.Context, identityID string) (*student.Student, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, record := range repo.students {
		if record.IdentityID == identityID {
			copied := *record
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Student")
}

func (repo *fakeRepo) Create(_ context.Context, record *student.Student) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, existing := range repo.students {
		if existing.AdmissionNumber == record.AdmissionNumber {
			return apperr.Conflict("Admission number is already in use")
		}
	}
	copied := *record
	repo.students[record.ID] = &copied
	return nil
}

func (repo *fakeRepo) Update(_ context.Context, record *student.Student) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	copied := *record
	repo.students[record.ID] = &copied
	return nil
}

func (repo *fakeRepo) SoftDelete(_ context.Context, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	delete(repo.students, id)
	return nil
}

func newTestService() (*student.Service, *fakeRepo) {
	repo := newFakeRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return student.NewService(repo, logger), repo
}

/*
TestNewAdmissionNumber checks the ADM prefix and timestamp shape.
*/
func TestNewAdmissionNumber(t *testing.T) {
	number := student.NewAdmissionNumber()

	assert.True(t, strings.HasPrefix(number, "ADM"))
	assert.Len(t, number, len("ADM")+14)

	_, err := time.Parse("20060102150405", strings.TrimPrefix(number, "ADM"))
	assert.NoError(t, err)
}

/*
TestService_RegisterProfile provisions a record from registration input.
*/
func TestService_RegisterProfile(t *testing.T) {
	service, repo := newTestService()

	err := service.RegisterProfile(context.Background(), "identity-1", auth.ProfileInput{
		FirstName:     "Asha",
		LastName:      "Nair",
		DateOfBirth:   "2012-04-15",
		Gender:        "female",
		GuardianName:  "Meera Nair",
		GuardianPhone: "+15550100200",
		Grade:         "8",
	})
	require.NoError(t, err)

	record, err := repo.FindByIdentityID(context.Background(), "identity-1")
	require.NoError(t, err)

	assert.NotEmpty(t, record.ID)
	assert.True(t, strings.HasPrefix(record.AdmissionNumber, "ADM"))
	assert.Equal(t, "Asha", record.FirstName)
	assert.Equal(t, "Meera Nair", record.GuardianName)
	assert.Equal(t, "8", record.Grade)
	require.NotNil(t, record.DateOfBirth)
	assert.Equal(t, "2012-04-15", record.DateOfBirth.Format("2006-01-02"))
	assert.WithinDuration(t, time.Now(), record.AdmissionDate, time.Minute)
}

/*
TestService_RegisterProfile_BadDate ignores an unparseable date of birth
rather than failing enrollment.
*/
func TestService_RegisterProfile_BadDate(t *testing.T) {
	service, repo := newTestService()

	err := service.RegisterProfile(context.Background(), "identity-1", auth.ProfileInput{
		FirstName:   "Asha",
		LastName:    "Nair",
		DateOfBirth: "15/04/2012",
	})
	require.NoError(t, err)

	record, err := repo.FindByIdentityID(context.Background(), "identity-1")
	require.NoError(t, err)
	assert.Nil(t, record.DateOfBirth)
}

/*
TestService_UpdateStudent pins the identity binding and admission number as
immutable across updates.
*/
func TestService_UpdateStudent(t *testing.T) {
	service, repo := newTestService()
	require.NoError(t, service.RegisterProfile(context.Background(), "identity-1", auth.ProfileInput{
		FirstName: "Asha",
		LastName:  "Nair",
	}))

	original, err := repo.FindByIdentityID(context.Background(), "identity-1")
	require.NoError(t, err)

	update := &student.Student{
		IdentityID:      "identity-hijack",
		AdmissionNumber: "ADM00000000000000",
		FirstName:       "Asha",
		LastName:        "Menon",
		Grade:           "9",
	}
	require.NoError(t, service.UpdateStudent(context.Background(), original.ID, update))

	stored, err := repo.FindByID(context.Background(), original.ID)
	require.NoError(t, err)
	assert.Equal(t, "Menon", stored.LastName)
	assert.Equal(t, "9", stored.Grade)
	assert.Equal(t, "identity-1", stored.IdentityID)
	assert.Equal(t, original.AdmissionNumber, stored.AdmissionNumber)
}

/*
TestService_UpdateStudent_Validation rejects missing names and malformed
phone numbers.
*/
func TestService_UpdateStudent_Validation(t *testing.T) {
	service, repo := newTestService()
	require.NoError(t, service.RegisterProfile(context.Background(), "identity-1", auth.ProfileInput{
		FirstName: "Asha",
		LastName:  "Nair",
	}))
	original, err := repo.FindByIdentityID(context.Background(), "identity-1")
	require.NoError(t, err)

	tests := []struct {
		name  string
		input *student.Student
	}{
		{"missing_first_name", &student.Student{LastName: "Nair"}},
		{"missing_last_name", &student.Student{FirstName: "Asha"}},
		{"bad_phone", &student.Student{FirstName: "Asha", LastName: "Nair", Phone: "not-a-phone"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.UpdateStudent(context.Background(), original.ID, tt.input)
			require.Error(t, err)
			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, "VALIDATION_ERROR", appError.Code)
		})
	}
}

/*
TestService_DeleteStudent removes the record; unknown IDs are NOT_FOUND.
*/
func TestService_DeleteStudent(t *testing.T) {
	service, repo := newTestService()
	require.NoError(t, service.RegisterProfile(context.Background(), "identity-1", auth.ProfileInput{
		FirstName: "Asha",
		LastName:  "Nair",
	}))
	original, err := repo.FindByIdentityID(context.Background(), "identity-1")
	require.NoError(t, err)

	require.NoError(t, service.DeleteStudent(context.Background(), original.ID))
	_, err = service.GetStudent(context.Background(), original.ID)
	assert.ErrorIs(t, err, apperr.NotFound("Student"))

	err = service.DeleteStudent(context.Background(), "missing-id")
	assert.ErrorIs(t, err, apperr.NotFound("Student"))
}

var _ student.Repository = (*fakeRepo)(nil)
