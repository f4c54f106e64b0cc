// Copyright (c) 2026 Campora. All rights reserved.

// Package faculty manages institutional faculty records.
//
// A faculty record is the employment-facing profile behind an identity:
// employee number, department, and designation. Authentication state lives
// in the iam domain; this package only references identities by ID.
package faculty

import "time"

// Faculty represents a staff member's institutional record.
type Faculty struct {
	ID             string     `json:"id"`
	IdentityID     string     `json:"identity_id"`
	EmployeeNumber string     `json:"employee_number"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	Gender         string     `json:"gender,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	Address        string     `json:"address,omitempty"`
	Department     string     `json:"department,omitempty"`
	Designation    string     `json:"designation,omitempty"`
	JoiningDate    time.Time  `json:"joining_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Filter narrows faculty list queries.
type Filter struct {
	Query      string // Matches employee number or name
	Department string
}

// Field identifiers for validation.
const (
	FieldFirstName  = "first_name"
	FieldLastName   = "last_name"
	FieldDepartment = "department"
	FieldPhone      = "phone"
)
