// Copyright (c) 2026 Campora. All rights reserved.

/*
Package auth implements the core identity and access management (IAM) system.

It handles everything from registration and secure password hashing to session
lifecycle management via JWT access tokens and a PostgreSQL-backed refresh
token rotation ledger.

Architecture:

  - Service: Orchestrates business logic (Register, Login, Refresh).
  - Repository: Abstracted interfaces for Postgres (Identities, Ledger) and
    Redis (volatile reset/verification tokens).
  - Security: Leverages bcrypt hashing and RSA-signed JWTs.

The package ensures that identity data remains consistent and secure throughout
the platform's lifecycle.
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/campora/campora/internal/platform/apperr"
	"github.com/campora/campora/internal/platform/ctxutil"
	"github.com/campora/campora/internal/platform/sec"
	"github.com/campora/campora/pkg/uuid"
)

// normalizeEmail converts an address to its canonical stored form. The
// unique index, the JWT email claim, and all lookups operate on this form.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// # Contracts & Types

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given identity.
	//
	// # Parameters
	//   - identityID: The ID of the account.
	//   - email: The email of the account.
	//   - roles: The role names held by the account.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed JWT string, or an err if signing fails.
	GenerateAccessToken(identityID, email string, roles []string, timeToLive time.Duration) (string, error)
}

// RoleDirectory is the auth service's view of the RBAC layer.
//
// Declared here so the auth package does not import rbac; the concrete
// implementation is the rbac service.
type RoleDirectory interface {
	// AssignByName links the identity to the role with the given name.
	// Returns a NOT_FOUND error if no such role exists.
	AssignByName(context context.Context, identityID, roleName string) error

	// NamesFor returns the role names currently assigned to the identity.
	NamesFor(context context.Context, identityID string) ([]string, error)
}

// ProfileInput carries the role-specific institutional details collected at
// registration time. Fields irrelevant to the chosen role are ignored.
type ProfileInput struct {
	FirstName   string
	LastName    string
	DateOfBirth string // "2006-01-02" format, optional
	Gender      string
	Phone       string
	Address     string

	// Student-only fields
	GuardianName  string
	GuardianPhone string
	Grade         string

	// Faculty-only fields
	Department  string
	Designation string
}

// ProfileRegistrar provisions the institutional record backing a freshly
// registered identity. Implemented by the records domain services.
type ProfileRegistrar interface {
	RegisterProfile(context context.Context, identityID string, profile ProfileInput) error
}

// Service implements identity and session use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, login, or
// rotation logic must be reviewed by the security team.
type Service struct {
	identityRepository          IdentityRepository
	refreshTokenRepository      RefreshTokenRepository
	resetTokenRepository        ResetTokenRepository
	verificationTokenRepository VerificationTokenRepository
	tokenProvider               TokenProvider
	roleDirectory               RoleDirectory
	registrars                  map[string]ProfileRegistrar
}

// NewService constructs a new auth [Service] with necessary dependencies.
func NewService(
	identityRepo IdentityRepository,
	refreshRepo RefreshTokenRepository,
	resetRepo ResetTokenRepository,
	verifyRepo VerificationTokenRepository,
	tokenProv TokenProvider,
	roles RoleDirectory,
) *Service {
	return &Service{
		identityRepository:          identityRepo,
		refreshTokenRepository:      refreshRepo,
		resetTokenRepository:        resetRepo,
		verificationTokenRepository: verifyRepo,
		tokenProvider:               tokenProv,
		roleDirectory:               roles,
		registrars:                  make(map[string]ProfileRegistrar),
	}
}

// RegisterProfileRegistrar wires the records-domain registrar for a role name.
// Roles without a registrar (e.g. Parent) get an identity but no profile row.
func (service *Service) RegisterProfileRegistrar(roleName string, registrar ProfileRegistrar) {
	service.registrars[roleName] = registrar
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	RoleType string
	Profile  ProfileInput
}

/*
Register validates, hashes, and persists a brand new identity.

Description: Creates the login account, assigns the requested role, and
provisions the role-specific institutional record through the registered
[ProfileRegistrar].

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *Identity: Created entity
  - err: ErrDuplicateEmail, role NOT_FOUND, or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*Identity, error) {

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new Identity. Time-sortable ID to prevent PG index fragmentation.
	identity := &Identity{
		ID:            uuid.New(),
		Email:         normalizeEmail(input.Email),
		PasswordHash:  hashedPassword,
		FullName:      input.FullName,
		IsActive:      true,
		EmailVerified: false,
	}

	// Persist the identity. The repository maps the unique violation on the
	// email index to ErrDuplicateEmail.
	if err := service.identityRepository.Create(context, identity); err != nil {
		return nil, err
	}

	// Bind the requested role. An unknown role name fails the whole
	// registration rather than leaving a roleless account behind.
	if err := service.roleDirectory.AssignByName(context, identity.ID, input.RoleType); err != nil {
		return nil, err
	}

	// Provision the institutional record for roles that carry one
	if registrar, ok := service.registrars[input.RoleType]; ok {
		if err := registrar.RegisterProfile(context, identity.ID, input.Profile); err != nil {
			return nil, fmt.Errorf("auth_service_profile_registration_failed: %w", err)
		}
	}

	// Generate and store a verification token in Redis. Best-effort: the
	// account is created either way, but a failure here leaves it unable to
	// verify its email, so it must be visible in the logs.
	token, err := sec.GenerateSecureToken(VerificationTokenLength)
	if err != nil {
		ctxutil.GetLogger(context).Error("verification_token_generation_failed",
			slog.String("identity_id", identity.ID),
			slog.Any("error", err),
		)
	} else if err := service.verificationTokenRepository.Set(context, token, identity.ID, VerificationTokenTTL); err != nil {
		ctxutil.GetLogger(context).Error("verification_token_store_failed",
			slog.String("identity_id", identity.ID),
			slog.Any("error", err),
		)
	}
	// TODO: Trigger email service with the verification link

	return identity, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
}

// LoginSession represents a successfully established session.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	Identity              *Identity
	Roles                 []string
}

/*
Login validates credentials and issues a token pair.

Description: Verifies identity, performs constant-time password comparison,
resolves role claims, and opens a new refresh-token lineage in the ledger.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session identifiers
  - err: ErrInvalidCredentials, ErrAccountInactive, or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {
	identity, err := service.identityRepository.FindByEmail(context, normalizeEmail(input.Email))

	// Generic message whether the account is missing or the password is wrong,
	// to prevent account enumeration.
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// Verify password hash using constant-time comparison in bcrypt to prevent timing attacks
	if !sec.CheckPasswordHash(input.Password, identity.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	// Deactivated accounts fail after the password check so the error does not
	// reveal account state to an attacker who doesn't hold the password.
	if !identity.IsActive {
		return nil, ErrAccountInactive
	}

	// Resolve role claims for the access token
	roles, err := service.roleDirectory.NamesFor(context, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_role_resolution_failed: %w", err)
	}

	// Generate short-lived Access Token
	accessToken, err := service.tokenProvider.GenerateAccessToken(identity.ID, identity.Email, roles, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	// Open a new refresh-token lineage in the ledger
	entry, err := service.createRefreshToken(context, identity.ID, input.IPAddress)
	if err != nil {
		return nil, err
	}

	// Best-effort bookkeeping; a failed timestamp must not fail the login
	_ = service.identityRepository.TouchLastLogin(context, identity.ID)

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          entry.Token,
		RefreshTokenExpiresAt: entry.ExpiresAt,
		Identity:              identity,
		Roles:                 roles,
	}, nil
}

// createRefreshToken generates a fresh ledger entry, retrying on the
// vanishingly unlikely token-string collision.
func (service *Service) createRefreshToken(context context.Context, identityID, ipAddress string) (*RefreshToken, error) {
	for attempt := 0; attempt < TokenGenerationRetries; attempt++ {
		raw, err := sec.GenerateSecureToken(RefreshTokenLength)
		if err != nil {
			return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
		}

		entry := &RefreshToken{
			ID:          uuid.New(),
			IdentityID:  identityID,
			Token:       raw,
			ExpiresAt:   time.Now().Add(RefreshTokenTTL),
			IsRevoked:   false,
			CreatedByIP: ipAddress,
		}

		err = service.refreshTokenRepository.Create(context, entry)
		if err == nil {
			return entry, nil
		}
		if !errors.Is(err, ErrTokenCollision) {
			return nil, fmt.Errorf("auth_service_ledger_create_failed: %w", err)
		}
	}

	return nil, apperr.Internal(fmt.Errorf("auth_service_token_collision_retries_exhausted"))
}

/*
Logout permanently revokes the presented refresh token.

Description: Idempotent; an unknown or already-revoked token is treated as a
successful logout.

Parameters:
  - context: context.Context
  - refreshToken: string
  - ipAddress: string

Returns:
  - err: Revocation failures
*/
func (service *Service) Logout(context context.Context, refreshToken, ipAddress string) error {
	if err := service.refreshTokenRepository.Revoke(context, refreshToken, ipAddress); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

/*
LogoutAll revokes every active refresh token belonging to the identity.

Description: Force sign-out across all devices and sessions.

Parameters:
  - context: context.Context
  - identityID: string

Returns:
  - err: Revocation failures
*/
func (service *Service) LogoutAll(context context.Context, identityID string) error {
	if err := service.refreshTokenRepository.RevokeAll(context, identityID); err != nil {
		return fmt.Errorf("auth_service_logout_all_failed: %w", err)
	}
	return nil
}

// # Session Rotation

/*
Refresh implements the refresh token rotation mechanism.

Description: Atomically redeems the presented token, links its successor in
the ledger chain, and issues a fresh access token with re-resolved role
claims. Reuse of a revoked token revokes every active token of the identity.

Parameters:
  - context: context.Context
  - refreshToken: string
  - ipAddress: string

Returns:
  - *LoginSession: New session credentials
  - err: ErrInvalidToken, ErrTokenExpired, ErrTokenReuse, ErrAccountInactive, or storage failures
*/
func (service *Service) Refresh(context context.Context, refreshToken, ipAddress string) (*LoginSession, error) {

	// Peek at the entry to learn the owner. Validity is re-checked under lock
	// inside Rotate, so this read can be stale without harm.
	entry, err := service.refreshTokenRepository.FindByToken(context, refreshToken)
	if err != nil {
		return nil, err
	}

	// Rotate: revoke the old token and install its successor atomically.
	// Retry only on a successor token-string collision.
	var redeemed *RefreshToken
	var successor *RefreshToken
	for attempt := 0; attempt < TokenGenerationRetries; attempt++ {
		raw, err := sec.GenerateSecureToken(RefreshTokenLength)
		if err != nil {
			return nil, fmt.Errorf("auth_service_refresh_secure_token_failed: %w", err)
		}

		successor = &RefreshToken{
			ID:          uuid.New(),
			IdentityID:  entry.IdentityID,
			Token:       raw,
			ExpiresAt:   time.Now().Add(RefreshTokenTTL),
			IsRevoked:   false,
			CreatedByIP: ipAddress,
		}

		redeemed, err = service.refreshTokenRepository.Rotate(context, refreshToken, successor, ipAddress)
		if err == nil {
			break
		}
		if errors.Is(err, ErrTokenCollision) {
			continue
		}
		return nil, err
	}
	if redeemed == nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_rotation_retries_exhausted"))
	}

	// The account may have been deactivated since the token was issued
	identity, err := service.identityRepository.FindByID(context, redeemed.IdentityID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !identity.IsActive {
		_ = service.refreshTokenRepository.RevokeAll(context, identity.ID)
		return nil, ErrAccountInactive
	}

	// Re-resolve roles so permission changes take effect on rotation rather
	// than waiting for the old access token to expire
	roles, err := service.roleDirectory.NamesFor(context, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_role_resolution_failed: %w", err)
	}

	accessToken, err := service.tokenProvider.GenerateAccessToken(identity.ID, identity.Email, roles, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_access_token_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          successor.Token,
		RefreshTokenExpiresAt: successor.ExpiresAt,
		Identity:              identity,
		Roles:                 roles,
	}, nil
}

// # Account Lifecycle

/*
Deactivate disables the identity and revokes all of its refresh tokens.

Parameters:
  - context: context.Context
  - identityID: string

Returns:
  - err: Storage failures
*/
func (service *Service) Deactivate(context context.Context, identityID string) error {
	if _, err := service.identityRepository.FindByID(context, identityID); err != nil {
		return err
	}

	if err := service.identityRepository.SetActive(context, identityID, false); err != nil {
		return fmt.Errorf("auth_service_deactivate_failed: %w", err)
	}

	// Active sessions must die with the account
	if err := service.refreshTokenRepository.RevokeAll(context, identityID); err != nil {
		return fmt.Errorf("auth_service_deactivate_revoke_failed: %w", err)
	}

	return nil
}

/*
Activate re-enables a previously deactivated identity.

Parameters:
  - context: context.Context
  - identityID: string

Returns:
  - err: Storage failures
*/
func (service *Service) Activate(context context.Context, identityID string) error {
	if _, err := service.identityRepository.FindByID(context, identityID); err != nil {
		return err
	}

	if err := service.identityRepository.SetActive(context, identityID, true); err != nil {
		return fmt.Errorf("auth_service_activate_failed: %w", err)
	}

	return nil
}

/*
GetIdentity returns the identity with the given ID.

Parameters:
  - context: context.Context
  - identityID: string

Returns:
  - *Identity: Hydrated entity
  - err: Not found or storage failures
*/
func (service *Service) GetIdentity(context context.Context, identityID string) (*Identity, error) {
	return service.identityRepository.FindByID(context, identityID)
}

/*
SweepExpiredTokens removes ledger entries past their expiration.

Description: Intended to run periodically from the server's maintenance loop.

Parameters:
  - context: context.Context

Returns:
  - int64: Number of entries removed
  - err: Cleanup failures
*/
func (service *Service) SweepExpiredTokens(context context.Context) (int64, error) {
	return service.refreshTokenRepository.DeleteExpired(context)
}

// # Password Recovery

/*
RequestPasswordReset initiates the forgot-password flow.

Description: Generates a secure token and saves it to Redis.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - string: Reset token
  - err: Generation errors
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) (string, error) {
	// Look up identity.
	// NOTE: We don't return NOT_FOUND if the email doesn't exist to prevent enumeration.
	identity, err := service.identityRepository.FindByEmail(context, normalizeEmail(email))
	if err != nil {
		return "", nil
	}

	token, err := sec.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return "", fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	if err := service.resetTokenRepository.Set(context, token, identity.ID, ResetTokenTTL); err != nil {
		return "", fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	return token, nil
}

/*
ResetPassword completes the forgot-password flow.

Description: Verifies the token, hashes the new password, updates the DB,
and revokes all active refresh tokens for security cleanup.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - err: Validation or update failures
*/
func (service *Service) ResetPassword(context context.Context, token, newPassword string) error {
	identityID, err := service.resetTokenRepository.Get(context, token)
	if err != nil {
		return err
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	if err := service.identityRepository.UpdatePassword(context, identityID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_password_update_failed: %w", err)
	}

	// Security cleanup: revoke EVERY active refresh token for this identity
	_ = service.refreshTokenRepository.RevokeAll(context, identityID)

	// Delete the used token from Redis
	_ = service.resetTokenRepository.Delete(context, token)

	return nil
}

/*
ChangePassword allows an authenticated caller to update their credentials.

Description: Verifies the current password and then revokes all OTHER refresh
tokens so stolen sessions on other devices are cut off.

Parameters:
  - context: context.Context
  - identityID: string
  - currentPassword: string
  - newPassword: string
  - currentRefreshToken: string

Returns:
  - err: ErrInvalidCredentials or storage failures
*/
func (service *Service) ChangePassword(context context.Context, identityID, currentPassword, newPassword, currentRefreshToken string) error {
	identity, err := service.identityRepository.FindByID(context, identityID)
	if err != nil {
		return err
	}

	// Verify the current password before allowing change
	if !sec.CheckPasswordHash(currentPassword, identity.PasswordHash) {
		return ErrInvalidCredentials
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	if err := service.identityRepository.UpdatePassword(context, identityID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	// Security side effect: force re-login on other devices
	if currentRefreshToken != "" {
		_ = service.refreshTokenRepository.RevokeOthers(context, identityID, currentRefreshToken)
	} else {
		_ = service.refreshTokenRepository.RevokeAll(context, identityID)
	}

	return nil
}

/*
VerifyEmail confirms an identity's email address using a secure token.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - err: Database or resolution errors
*/
func (service *Service) VerifyEmail(context context.Context, token string) error {
	identityID, err := service.verificationTokenRepository.Get(context, token)
	if err != nil {
		return err
	}

	if err := service.identityRepository.MarkVerified(context, identityID); err != nil {
		return fmt.Errorf("auth_service_verify_email_failed: %w", err)
	}

	// Cleanup the used verification token from Redis
	_ = service.verificationTokenRepository.Delete(context, token)

	return nil
}
