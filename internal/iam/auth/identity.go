// Copyright (c) 2026 Campora. All rights reserved.

/*
Package auth implements the identity and access management layer for Campora.

It defines the core domain entities (Identity, RefreshToken) and logic for
credential verification, token issuance, and session lifecycle.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to identity.
*/
package auth

import (
	"time"
)

// # Domain Entities

// Identity represents a login account in the Campora platform.
//
// An identity carries only authentication state. Institutional data (student
// admission records, faculty employment records) lives in the records domain
// and references the identity by ID.
type Identity struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"` // Explicitly omitted from JSON for security.
	FullName      string     `json:"full_name"`
	IsActive      bool       `json:"is_active"`
	EmailVerified bool       `json:"email_verified"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// RefreshToken is one entry in the refresh-token rotation ledger.
//
// # Rotation Chain
//
// When a token is rotated, the old row is revoked and its ReplacedByToken
// column records the successor's token string. Rows are never deleted during
// rotation, so the full chain from first login to the active descendant can
// always be reconstructed. Reuse of a revoked member of the chain is treated
// as theft and revokes every active token the identity holds.
type RefreshToken struct {
	ID              string     `json:"id"`
	IdentityID      string     `json:"identity_id"`
	Token           string     `json:"-"` // Raw token value. Omitted for security.
	ExpiresAt       time.Time  `json:"expires_at"`
	IsRevoked       bool       `json:"is_revoked"`
	RevokedAt       *time.Time `json:"revoked_at,omitempty"`
	ReplacedByToken string     `json:"-"`
	CreatedByIP     string     `json:"created_by_ip"`
	RevokedByIP     string     `json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
}

// IsExpired reports whether the token's lifetime has elapsed.
func (t *RefreshToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// IsActive reports whether the token can still be redeemed.
func (t *RefreshToken) IsActive() bool {
	return !t.IsRevoked && !t.IsExpired()
}

// # Field Identifiers

// Global field names for validation and identity mapping in the auth domain.
const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldFullName        = "full_name"
	FieldRoleType        = "role_type"
	FieldToken           = "token"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldAccessToken     = "access_token"
	FieldTokenType       = "token_type"
	FieldExpiresIn       = "expires_in"
	FieldIdentity        = "identity"
	FieldMessage         = "message"
)
