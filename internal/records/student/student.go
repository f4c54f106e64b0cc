// Copyright (c) 2026 Campora. All rights reserved.

// Package student manages institutional student records.
//
// A student record is the enrollment-facing profile behind an identity:
// admission number, guardian contacts, and class placement. Authentication
// state lives in the iam domain; this package only references identities
// by ID.
package student

import "time"

// Student represents an enrolled student's institutional record.
type Student struct {
	ID              string     `json:"id"`
	IdentityID      string     `json:"identity_id"`
	AdmissionNumber string     `json:"admission_number"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	DateOfBirth     *time.Time `json:"date_of_birth,omitempty"`
	Gender          string     `json:"gender,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	Address         string     `json:"address,omitempty"`
	GuardianName    string     `json:"guardian_name,omitempty"`
	GuardianPhone   string     `json:"guardian_phone,omitempty"`
	AdmissionDate   time.Time  `json:"admission_date"`
	Grade           string     `json:"grade,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Filter narrows student list queries.
type Filter struct {
	Query string // Matches admission number or name
	Grade string
}

// Field identifiers for validation.
const (
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldGrade     = "grade"
	FieldPhone     = "phone"
)
