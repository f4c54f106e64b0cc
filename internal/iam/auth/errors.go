// Copyright (c) 2026 Campora. All rights reserved.

package auth

import (
	"net/http"

	"github.com/campora/campora/internal/platform/apperr"
)

// # Error Taxonomy
//
// Sentinel errors for the auth domain. Callers compare with errors.Is;
// the HTTP layer maps them to responses through the apperr envelope.

var (
	// ErrInvalidCredentials is returned for a wrong email or password.
	// One message for both cases to prevent account enumeration.
	ErrInvalidCredentials = apperr.New("INVALID_CREDENTIALS", "Invalid email or password", http.StatusUnauthorized)

	// ErrAccountInactive is returned when the identity exists but has been deactivated.
	ErrAccountInactive = apperr.New("ACCOUNT_INACTIVE", "Account has been deactivated", http.StatusForbidden)

	// ErrDuplicateEmail is returned when registering with an email that is already taken.
	ErrDuplicateEmail = apperr.New("DUPLICATE_EMAIL", "Email is already registered", http.StatusConflict)

	// ErrInvalidToken is returned when a presented refresh token is unknown to the ledger.
	ErrInvalidToken = apperr.New("INVALID_TOKEN", "Refresh token is invalid", http.StatusUnauthorized)

	// ErrTokenExpired is returned when a presented refresh token has passed its lifetime.
	ErrTokenExpired = apperr.New("TOKEN_EXPIRED", "Refresh token has expired", http.StatusUnauthorized)

	// ErrTokenReuse is returned when a revoked refresh token is presented again.
	// Every active token belonging to the identity is revoked as a side effect.
	ErrTokenReuse = apperr.New("TOKEN_REUSE_DETECTED", "Refresh token has already been used", http.StatusUnauthorized)

	// ErrTokenCollision signals that a generated token string already exists
	// in the ledger. The service retries with a fresh token.
	ErrTokenCollision = apperr.New("TOKEN_COLLISION", "Refresh token collision", http.StatusConflict)
)
