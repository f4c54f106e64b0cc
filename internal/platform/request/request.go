// Copyright (c) 2026 Campora. All rights reserved.

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campora/campora/internal/platform/apperr"
	"github.com/campora/campora/internal/platform/ctxutil"
	"github.com/campora/campora/internal/platform/sec"
	"github.com/campora/campora/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Param retrieves a named URL parameter from the request.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// Claims extracts the authenticated identity claims from the request context.
//
// Returns nil if the request is not authenticated.
func Claims(request *http.Request) *sec.AccessClaims {
	return ctxutil.GetIdentity(request.Context())
}

/*
RequiredClaims ensures the request is authenticated and returns the identity claims.

Returns:
  - *sec.AccessClaims: The authenticated identity claims
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.AccessClaims, error) {
	claims := ctxutil.GetIdentity(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}

/*
RequiredIdentityID returns the identity UUID of the currently logged-in caller.

Returns:
  - string: Identity UUID
  - error: apperr.Unauthorized if not authenticated
*/
func RequiredIdentityID(request *http.Request) (string, error) {
	claims, err := RequiredClaims(request)
	if err != nil {
		return "", err
	}
	return claims.IdentityID(), nil
}
