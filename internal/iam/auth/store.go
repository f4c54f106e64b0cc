// Copyright (c) 2026 Campora. All rights reserved.

package auth

import (
	"context"
	"time"
)

// # Identity Data Access

// IdentityRepository defines the data access contract for login accounts.
type IdentityRepository interface {

	/*
		FindByID returns the identity with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Identity: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Identity, error)

	/*
		FindByEmail returns the identity with the given email.
		The lookup is case-insensitive.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *Identity: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*Identity, error)

	/*
		Create persists a brand-new identity to the storage.

		Parameters:
		  - context: context.Context
		  - identity: *Identity

		Returns:
		  - error: ErrDuplicateEmail on unique violation, or persistence failures
	*/
	Create(context context.Context, identity *Identity) error

	/*
		Update persists changes to mutable profile fields.

		Parameters:
		  - context: context.Context
		  - identity: *Identity

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, identity *Identity) error

	/*
		UpdatePassword replaces only the identity's password hash.

		Parameters:
		  - context: context.Context
		  - identityID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, identityID, newHash string) error

	/*
		SetActive flips the identity's active flag.

		Parameters:
		  - context: context.Context
		  - identityID: string
		  - active: bool

		Returns:
		  - error: Persistence failures
	*/
	SetActive(context context.Context, identityID string, active bool) error

	/*
		MarkVerified updates the identity's status to emailverified = true.

		Parameters:
		  - context: context.Context
		  - identityID: string

		Returns:
		  - error: Persistence failures
	*/
	MarkVerified(context context.Context, identityID string) error

	/*
		TouchLastLogin records the time of a successful authentication.

		Parameters:
		  - context: context.Context
		  - identityID: string

		Returns:
		  - error: Persistence failures
	*/
	TouchLastLogin(context context.Context, identityID string) error
}

// # Refresh Token Ledger

// RefreshTokenRepository is the data access contract for the rotation ledger.
//
// # Invariants
//
// Token strings are unique across all time. Rotation revokes the old row and
// records the successor in replacedbytoken; rows are only deleted by the
// expiry sweep, never during rotation.
type RefreshTokenRepository interface {

	/*
		Create persists a new refresh token issued at login.

		Parameters:
		  - context: context.Context
		  - token: *RefreshToken

		Returns:
		  - error: ErrTokenCollision on a duplicate token string, or persistence failures
	*/
	Create(context context.Context, token *RefreshToken) error

	/*
		FindByToken returns the ledger entry for the given raw token string,
		regardless of its revocation or expiry state.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - *RefreshToken: Hydrated entry
		  - error: ErrInvalidToken if the token is unknown
	*/
	FindByToken(context context.Context, token string) (*RefreshToken, error)

	/*
		Rotate atomically redeems an active token and installs its successor.

		The operation runs in a single transaction: the old row is locked,
		validated, revoked with replacedbytoken set to the successor's token,
		and the successor row is inserted. Reuse of a revoked token revokes
		every active token belonging to the identity inside the same
		transaction.

		Parameters:
		  - context: context.Context
		  - oldToken: string (Raw token being redeemed)
		  - successor: *RefreshToken (Fully populated replacement entry)
		  - revokedByIP: string

		Returns:
		  - *RefreshToken: The redeemed (now revoked) entry, identifying the owner
		  - error: ErrInvalidToken, ErrTokenExpired, ErrTokenReuse, or storage failures
	*/
	Rotate(context context.Context, oldToken string, successor *RefreshToken, revokedByIP string) (*RefreshToken, error)

	/*
		Revoke marks a single token as permanently invalidated.

		Parameters:
		  - context: context.Context
		  - token: string
		  - revokedByIP: string

		Returns:
		  - error: Persistence failures
	*/
	Revoke(context context.Context, token, revokedByIP string) error

	/*
		RevokeAll revokes every active token belonging to the identity.

		Parameters:
		  - context: context.Context
		  - identityID: string

		Returns:
		  - error: Persistence failures
	*/
	RevokeAll(context context.Context, identityID string) error

	/*
		RevokeOthers revokes all active tokens belonging to the identity
		except for the given token string.

		Parameters:
		  - context: context.Context
		  - identityID: string
		  - keepToken: string

		Returns:
		  - error: Persistence failures
	*/
	RevokeOthers(context context.Context, identityID, keepToken string) error

	/*
		DeleteExpired physically removes tokens whose ExpiresAt is in the past.

		Parameters:
		  - context: context.Context

		Returns:
		  - int64: Number of rows removed
		  - error: Persistence failures
	*/
	DeleteExpired(context context.Context) (int64, error)
}

// # Volatile Data Access

// ResetTokenRepository defines the contract for storing volatile password reset tokens.
type ResetTokenRepository interface {

	/*
		Set stores a reset token associated with an identityID for a limited duration.

		Parameters:
		  - context: context.Context
		  - token: string
		  - identityID: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, token string, identityID string, ttl time.Duration) error

	/*
		Get retrieves the identityID associated with a given reset token.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - string: IdentityID
		  - error: Retrieval failures
	*/
	Get(context context.Context, token string) (string, error)

	/*
		Delete removes a reset token after successful use.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, token string) error
}

// VerificationTokenRepository defines the contract for storing volatile email verification tokens.
type VerificationTokenRepository interface {

	/*
		Set stores a verification token associated with an identityID.

		Parameters:
		  - context: context.Context
		  - token: string
		  - identityID: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, token string, identityID string, ttl time.Duration) error

	/*
		Get retrieves the identityID associated with a given verification token.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - string: IdentityID
		  - error: Retrieval failures
	*/
	Get(context context.Context, token string) (string, error)

	/*
		Delete removes a verification token after successful use.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, token string) error
}
