// Copyright (c) 2026 Campora. All rights reserved.

/*
HTTP delivery layer for identity management.

It implements the gateway for the authentication lifecycle, from account
creation to session rotation and recovery.

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: Standard RESTful JSON interface.
  - Security: Handles JWT orchestration and refresh token cookie injection.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/
package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/campora/campora/internal/iam/rbac"
	"github.com/campora/campora/internal/platform/apperr"
	"github.com/campora/campora/internal/platform/constants"
	"github.com/campora/campora/internal/platform/middleware"
	requestutil "github.com/campora/campora/internal/platform/request"
	"github.com/campora/campora/internal/platform/respond"
	"github.com/campora/campora/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages everything related to the identity lifecycle entry
// points (Registration, Login, Rotation, Password Recovery).
type Handler struct {
	authService *Service
	checker     middleware.PermissionChecker
}

// NewHandler constructs a new [Handler] with its service dependencies.
func NewHandler(service *Service, checker middleware.PermissionChecker) *Handler {
	return &Handler{authService: service, checker: checker}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/verify-email", handler.verifyEmail)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.me)
		r.Post("/logout", handler.logout)
		r.Post("/logout-all", handler.logoutAll)
		r.Post("/change-password", handler.changePassword)
	})

	// Administrative account lifecycle
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(handler.checker, rbac.PermUsersEdit))
		r.Post("/identities/{identityID}/activate", handler.activateIdentity)
		r.Post("/identities/{identityID}/deactivate", handler.deactivateIdentity)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	RoleType string `json:"role_type"`

	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	DateOfBirth   string `json:"date_of_birth"`
	Gender        string `json:"gender"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	GuardianName  string `json:"guardian_name"`
	GuardianPhone string `json:"guardian_phone"`
	Grade         string `json:"grade"`
	Department    string `json:"department"`
	Designation   string `json:"designation"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyEmailRequest struct {
	Token string `json:"token"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

/*
Register handles the creation of a new identity.

POST /api/v1/auth/register

Description: Validates input, enrolls the identity with the requested role,
and provisions the role-specific institutional record. The Admin role cannot
be requested through this endpoint.

Request:
  - Body: registerRequest

Response:
  - 201: Identity: Created profile
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: DUPLICATE_EMAIL: Email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8).
		Required(FieldFullName, input.FullName).
		Required(FieldRoleType, input.RoleType).
		OneOf(FieldRoleType, input.RoleType, rbac.RoleStudent, rbac.RoleFaculty, rbac.RoleParent).
		Phone("phone", input.Phone)

	if input.DateOfBirth != "" {
		validator.Date("date_of_birth", input.DateOfBirth)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity, err := handler.authService.Register(request.Context(), RegisterInput{
		Email:    input.Email,
		Password: input.Password,
		FullName: input.FullName,
		RoleType: input.RoleType,
		Profile: ProfileInput{
			FirstName:     input.FirstName,
			LastName:      input.LastName,
			DateOfBirth:   input.DateOfBirth,
			Gender:        input.Gender,
			Phone:         input.Phone,
			Address:       input.Address,
			GuardianName:  input.GuardianName,
			GuardianPhone: input.GuardianPhone,
			Grade:         input.Grade,
			Department:    input.Department,
			Designation:   input.Designation,
		},
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, identity)
}

/*
Login authenticates an identity and establishes a session.

POST /api/v1/auth/login

Description: Verifies credentials, generates a JWT access token, and injects
a secure refresh token cookie into the response.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: Session: Access token and identity profile
  - 401: INVALID_CREDENTIALS: Bad email or password
  - 403: ACCOUNT_INACTIVE: Account deactivated
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Email:     input.Email,
		Password:  input.Password,
		IPAddress: middleware.RealIP(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, session.RefreshToken, session.RefreshTokenExpiresAt)

	respond.OK(writer, map[string]any{
		FieldAccessToken: session.AccessToken,
		FieldTokenType:   "Bearer",
		FieldExpiresIn:   int64(AccessTokenTTL / time.Second),
		FieldIdentity:    session.Identity,
		"roles":          session.Roles,
	})
}

/*
Refresh issues a new token pair using a valid refresh token.

POST /api/v1/auth/refresh

Description: Rotates the session by validating the refresh token cookie,
revoking the presented token, and issuing a fresh pair. Reuse of an
already-rotated token revokes every active session of the identity.

Response:
  - 200: RefreshResponse: New access token credentials
  - 401: INVALID_TOKEN / TOKEN_EXPIRED / TOKEN_REUSE_DETECTED
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh token in cookies"))
		return
	}

	session, err := handler.authService.Refresh(request.Context(), cookie.Value, middleware.RealIP(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, session.RefreshToken, session.RefreshTokenExpiresAt)

	respond.OK(writer, map[string]any{
		FieldAccessToken: session.AccessToken,
		FieldTokenType:   "Bearer",
		FieldExpiresIn:   int64(AccessTokenTTL / time.Second),
	})
}

/*
Logout terminates the current session.

POST /api/v1/auth/logout

Description: Revokes the refresh token (if present) and clears the security
cookie from the client. Idempotent.

Response:
  - 204: No Content: Session terminated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)

	if err == nil && cookie != nil && cookie.Value != "" {
		_ = handler.authService.Logout(request.Context(), cookie.Value, middleware.RealIP(request))
	}

	clearRefreshCookie(writer)
	respond.NoContent(writer)
}

/*
LogoutAll terminates every session belonging to the caller.

POST /api/v1/auth/logout-all

Response:
  - 204: No Content: All sessions terminated
*/
func (handler *Handler) logoutAll(writer http.ResponseWriter, request *http.Request) {
	identityID, err := requestutil.RequiredIdentityID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.LogoutAll(request.Context(), identityID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	clearRefreshCookie(writer)
	respond.NoContent(writer)
}

/*
Me returns the authenticated caller's identity profile.

GET /api/v1/auth/me

Response:
  - 200: Identity
  - 401: UNAUTHORIZED
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	identityID, err := requestutil.RequiredIdentityID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity, err := handler.authService.GetIdentity(request.Context(), identityID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, identity)
}

/*
VerifyEmail confirms an identity's email ownership.

POST /api/v1/auth/verify-email

Request:
  - Body: verifyEmailRequest (Token)

Response:
  - 200: Success: Email verified
  - 400: ErrInvalidJSON: Missing or invalid token
*/
func (handler *Handler) verifyEmail(writer http.ResponseWriter, request *http.Request) {
	var input verifyEmailRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.Token == "" {
		respond.Error(writer, request, validate.RequiredError(FieldToken, "is required"))
		return
	}

	if err := handler.authService.VerifyEmail(request.Context(), input.Token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Email verified successfully",
	})
}

/*
ForgotPassword initiates the password recovery flow.

POST /api/v1/auth/forgot-password

Description: Issues a reset token for the provided email if the account
exists. The response is identical either way to prevent enumeration.

Request:
  - Body: forgotPasswordRequest (Email)

Response:
  - 200: Success: Generic security message
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	_, err := handler.authService.RequestPasswordReset(request.Context(), input.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "If this email is registered, a reset link has been sent.",
	})
}

/*
ResetPassword completes the password recovery flow.

POST /api/v1/auth/reset-password

Request:
  - Body: resetPasswordRequest (Token, Password)

Response:
  - 200: Success: Password updated
  - 401: Invalid or expired reset token
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldToken, input.Token).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), input.Token, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password updated successfully",
	})
}

/*
ChangePassword updates the authenticated caller's password.

POST /api/v1/auth/change-password

Request:
  - Body: changePasswordRequest (CurrentPassword, NewPassword)

Response:
  - 200: Success: Password changed
  - 401: INVALID_CREDENTIALS: Current password incorrect
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	identityID, err := requestutil.RequiredIdentityID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldCurrentPassword, input.CurrentPassword).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, 8)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// The refresh cookie identifies the session to keep alive. Absent cookie
	// means all sessions are revoked after the change.
	var currentRefreshToken string
	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil {
		currentRefreshToken = cookie.Value
	}

	err = handler.authService.ChangePassword(
		request.Context(),
		identityID,
		input.CurrentPassword,
		input.NewPassword,
		currentRefreshToken,
	)

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password changed successfully",
	})
}

/*
ActivateIdentity re-enables a deactivated account.

POST /api/v1/auth/identities/{identityID}/activate

Response:
  - 200: Success: Account activated
  - 404: NOT_FOUND: Unknown identity
*/
func (handler *Handler) activateIdentity(writer http.ResponseWriter, request *http.Request) {
	identityID := requestutil.Param(request, "identityID")

	if err := handler.authService.Activate(request.Context(), identityID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Account activated",
	})
}

/*
DeactivateIdentity disables an account and revokes all of its sessions.

POST /api/v1/auth/identities/{identityID}/deactivate

Response:
  - 200: Success: Account deactivated
  - 404: NOT_FOUND: Unknown identity
*/
func (handler *Handler) deactivateIdentity(writer http.ResponseWriter, request *http.Request) {
	identityID := requestutil.Param(request, "identityID")

	if err := handler.authService.Deactivate(request.Context(), identityID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Account deactivated",
	})
}

// # Cookie Helpers

func setRefreshCookie(writer http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    token,
		Path:     constants.RefreshTokenCookiePath,
		Expires:  expiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearRefreshCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
