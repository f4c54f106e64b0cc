// Copyright (c) 2026 Campora. All rights reserved.

// PostgreSQL implementations of the auth domain repositories.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain sentinel
// errors to avoid leaking storage implementation details.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campora/campora/internal/platform/apperr"
	"github.com/campora/campora/internal/platform/dberr"
)

// # Identity Repository

// PostgresIdentityRepository implements the IdentityRepository interface using pgx.
type PostgresIdentityRepository struct {
	pool *pgxpool.Pool
}

// NewIdentityRepository creates a new PostgreSQL implementation of the IdentityRepository.
func NewIdentityRepository(pool *pgxpool.Pool) *PostgresIdentityRepository {
	return &PostgresIdentityRepository{pool: pool}
}

const identityColumns = `id, email, passwordhash, fullname, isactive, emailverified, lastloginat, createdat, updatedat`

func scanIdentity(row pgx.Row) (*Identity, error) {
	identity := &Identity{}
	err := row.Scan(
		&identity.ID,
		&identity.Email,
		&identity.PasswordHash,
		&identity.FullName,
		&identity.IsActive,
		&identity.EmailVerified,
		&identity.LastLoginAt,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return identity, nil
}

/*
Create persists a new identity record into the iam.identity table.

Parameters:
  - context: context.Context
  - identity: *Identity (Entity to persist)

Returns:
  - error: ErrDuplicateEmail on unique violation, or connectivity errors
*/
func (repository *PostgresIdentityRepository) Create(context context.Context, identity *Identity) error {
	const query = `
		INSERT INTO iam.identity (
			id, email, passwordhash, fullname, isactive, emailverified, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	now := time.Now()
	if identity.CreatedAt.IsZero() {
		identity.CreatedAt = now
	}
	identity.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		identity.ID,
		identity.Email,
		identity.PasswordHash,
		identity.FullName,
		identity.IsActive,
		identity.EmailVerified,
		identity.CreatedAt,
		identity.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("postgres_identity_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByEmail retrieves an identity by its unique email address.

Description: The email index is built on lower(email), so the lookup is
case-insensitive.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *Identity: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresIdentityRepository) FindByEmail(context context.Context, email string) (*Identity, error) {
	const query = `
		SELECT ` + identityColumns + `
		FROM iam.identity
		WHERE lower(email) = lower($1)`

	identity, err := scanIdentity(repository.pool.QueryRow(context, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Identity")
		}
		return nil, fmt.Errorf("postgres_identity_repo_find_by_email_failed: %w", err)
	}

	return identity, nil
}

/*
FindByID retrieves an identity by its unique ID.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *Identity: Hydrated entity
  - error: Not found or execution errors
*/
func (repository *PostgresIdentityRepository) FindByID(context context.Context, id string) (*Identity, error) {
	const query = `
		SELECT ` + identityColumns + `
		FROM iam.identity
		WHERE id = $1`

	identity, err := scanIdentity(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Identity")
		}
		return nil, fmt.Errorf("postgres_identity_repo_find_by_id_failed: %w", err)
	}

	return identity, nil
}

/*
Update persists changes to an identity's mutable profile fields.

Parameters:
  - context: context.Context
  - identity: *Identity

Returns:
  - error: Update failures
*/
func (repository *PostgresIdentityRepository) Update(context context.Context, identity *Identity) error {
	const query = `
		UPDATE iam.identity
		SET email = $2, fullname = $3, updatedat = $4
		WHERE id = $1`

	identity.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		identity.ID,
		identity.Email,
		identity.FullName,
		identity.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("postgres_identity_repo_update_failed: %w", err)
	}

	return nil
}

/*
UpdatePassword updates only the password hash for a specific identity.

Parameters:
  - context: context.Context
  - identityID: string
  - newHash: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresIdentityRepository) UpdatePassword(context context.Context, identityID, newHash string) error {
	const query = `
		UPDATE iam.identity
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, identityID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_identity_repo_update_password_failed: %w", err)
	}

	return nil
}

/*
SetActive flips the identity's active flag.

Parameters:
  - context: context.Context
  - identityID: string
  - active: bool

Returns:
  - error: Execution errors
*/
func (repository *PostgresIdentityRepository) SetActive(context context.Context, identityID string, active bool) error {
	const query = "UPDATE iam.identity SET isactive = $2, updatedat = $3 WHERE id = $1"
	_, err := repository.pool.Exec(context, query, identityID, active, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_identity_repo_set_active_failed: %w", err)
	}
	return nil
}

/*
MarkVerified updates the identity's status to emailverified = true.

Parameters:
  - context: context.Context
  - identityID: string

Returns:
  - error: Database errors
*/
func (repository *PostgresIdentityRepository) MarkVerified(context context.Context, identityID string) error {
	const query = "UPDATE iam.identity SET emailverified = TRUE, updatedat = $2 WHERE id = $1"
	_, err := repository.pool.Exec(context, query, identityID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_identity_repo_mark_verified_failed: %w", err)
	}
	return nil
}

/*
TouchLastLogin records the time of a successful authentication.

Parameters:
  - context: context.Context
  - identityID: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresIdentityRepository) TouchLastLogin(context context.Context, identityID string) error {
	const query = "UPDATE iam.identity SET lastloginat = now() WHERE id = $1"
	_, err := repository.pool.Exec(context, query, identityID)
	if err != nil {
		return fmt.Errorf("postgres_identity_repo_touch_last_login_failed: %w", err)
	}
	return nil
}

// # Refresh Token Ledger

// PostgresRefreshTokenRepository implements the RefreshTokenRepository interface.
type PostgresRefreshTokenRepository struct {
	pool *pgxpool.Pool
}

// NewRefreshTokenRepository creates a new PostgreSQL implementation of RefreshTokenRepository.
func NewRefreshTokenRepository(pool *pgxpool.Pool) *PostgresRefreshTokenRepository {
	return &PostgresRefreshTokenRepository{pool: pool}
}

const refreshTokenColumns = `id, identityid, token, expiresat, isrevoked, revokedat, replacedbytoken, createdbyip, revokedbyip, createdat`

func scanRefreshToken(row pgx.Row) (*RefreshToken, error) {
	entry := &RefreshToken{}
	var replacedBy, revokedByIP *string
	err := row.Scan(
		&entry.ID,
		&entry.IdentityID,
		&entry.Token,
		&entry.ExpiresAt,
		&entry.IsRevoked,
		&entry.RevokedAt,
		&replacedBy,
		&entry.CreatedByIP,
		&revokedByIP,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if replacedBy != nil {
		entry.ReplacedByToken = *replacedBy
	}
	if revokedByIP != nil {
		entry.RevokedByIP = *revokedByIP
	}
	return entry, nil
}

// revokeIdentityTokensQuery revokes every still-active token belonging to the
// identity. A replayed token means the account's sessions cannot be trusted,
// so the reuse branch invalidates all of them, not just the replayed chain.
const revokeIdentityTokensQuery = `
	UPDATE iam.refreshtoken
	SET isrevoked = TRUE, revokedat = now(), revokedbyip = $2
	WHERE identityid = $1 AND isrevoked = FALSE`

const insertRefreshTokenQuery = `
	INSERT INTO iam.refreshtoken (
		id, identityid, token, expiresat, isrevoked, createdbyip, createdat
	) VALUES ($1, $2, $3, $4, $5, $6, $7)`

/*
Create persists a new refresh token issued at login.

Parameters:
  - context: context.Context
  - token: *RefreshToken

Returns:
  - error: ErrTokenCollision on a duplicate token string, or storage failures
*/
func (repository *PostgresRefreshTokenRepository) Create(context context.Context, token *RefreshToken) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(context, insertRefreshTokenQuery,
		token.ID,
		token.IdentityID,
		token.Token,
		token.ExpiresAt,
		token.IsRevoked,
		token.CreatedByIP,
		token.CreatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrTokenCollision
		}
		return fmt.Errorf("postgres_refresh_token_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByToken retrieves a ledger entry by its raw token string.

Description: Returns the entry regardless of revocation or expiry state so
the caller can distinguish reuse from simple invalidity.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *RefreshToken: Hydrated entry
  - error: ErrInvalidToken if the token is unknown
*/
func (repository *PostgresRefreshTokenRepository) FindByToken(context context.Context, token string) (*RefreshToken, error) {
	const query = `
		SELECT ` + refreshTokenColumns + `
		FROM iam.refreshtoken
		WHERE token = $1`

	entry, err := scanRefreshToken(repository.pool.QueryRow(context, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("postgres_refresh_token_repo_find_failed: %w", err)
	}

	return entry, nil
}

/*
Rotate atomically redeems an active token and installs its successor.

Description: The old row is locked with FOR UPDATE, so two concurrent
redemptions of the same token serialize; the loser observes isrevoked = TRUE
and takes the reuse branch. Reuse revokes every active token belonging to
the identity before the transaction commits.

Parameters:
  - context: context.Context
  - oldToken: string
  - successor: *RefreshToken
  - revokedByIP: string

Returns:
  - *RefreshToken: The redeemed (now revoked) entry
  - error: ErrInvalidToken, ErrTokenExpired, ErrTokenReuse, ErrTokenCollision, or storage failures
*/
func (repository *PostgresRefreshTokenRepository) Rotate(context context.Context, oldToken string, successor *RefreshToken, revokedByIP string) (*RefreshToken, error) {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return nil, fmt.Errorf("postgres_refresh_token_repo_rotate_begin_failed: %w", err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	// 1. Lock the presented row for the duration of the transaction
	const lockQuery = `
		SELECT ` + refreshTokenColumns + `
		FROM iam.refreshtoken
		WHERE token = $1
		FOR UPDATE`

	entry, err := scanRefreshToken(transaction.QueryRow(context, lockQuery, oldToken))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("postgres_refresh_token_repo_rotate_lock_failed: %w", err)
	}

	// 2. Reuse detection: a revoked token presented again means the session
	// is compromised. Revoke every active token the identity holds and
	// persist that outcome.
	if entry.IsRevoked {
		if _, err := transaction.Exec(context, revokeIdentityTokensQuery, entry.IdentityID, revokedByIP); err != nil {
			return nil, fmt.Errorf("postgres_refresh_token_repo_rotate_reuse_revoke_failed: %w", err)
		}
		if err := transaction.Commit(context); err != nil {
			return nil, fmt.Errorf("postgres_refresh_token_repo_rotate_commit_failed: %w", err)
		}
		return nil, ErrTokenReuse
	}

	// 3. Expiry check. The row stays in the ledger for the sweep to collect.
	if entry.IsExpired() {
		return nil, ErrTokenExpired
	}

	// 4. Revoke the old row and record its successor
	const revokeQuery = `
		UPDATE iam.refreshtoken
		SET isrevoked = TRUE, revokedat = now(), revokedbyip = $2, replacedbytoken = $3
		WHERE token = $1 AND isrevoked = FALSE`

	tag, err := transaction.Exec(context, revokeQuery, oldToken, revokedByIP, successor.Token)
	if err != nil {
		return nil, fmt.Errorf("postgres_refresh_token_repo_rotate_revoke_failed: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return nil, ErrTokenReuse
	}

	// 5. Install the successor
	if successor.CreatedAt.IsZero() {
		successor.CreatedAt = time.Now()
	}

	_, err = transaction.Exec(context, insertRefreshTokenQuery,
		successor.ID,
		successor.IdentityID,
		successor.Token,
		successor.ExpiresAt,
		successor.IsRevoked,
		successor.CreatedByIP,
		successor.CreatedAt,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, ErrTokenCollision
		}
		return nil, fmt.Errorf("postgres_refresh_token_repo_rotate_insert_failed: %w", err)
	}

	if err := transaction.Commit(context); err != nil {
		return nil, fmt.Errorf("postgres_refresh_token_repo_rotate_commit_failed: %w", err)
	}

	return entry, nil
}

/*
Revoke marks a single token as permanently invalidated.

Parameters:
  - context: context.Context
  - token: string
  - revokedByIP: string

Returns:
  - error: Revocation failures
*/
func (repository *PostgresRefreshTokenRepository) Revoke(context context.Context, token, revokedByIP string) error {
	const query = `
		UPDATE iam.refreshtoken
		SET isrevoked = TRUE, revokedat = now(), revokedbyip = $2
		WHERE token = $1 AND isrevoked = FALSE`

	_, err := repository.pool.Exec(context, query, token, revokedByIP)
	if err != nil {
		return fmt.Errorf("postgres_refresh_token_repo_revoke_failed: %w", err)
	}
	return nil
}

/*
RevokeAll marks all active tokens for an identity as revoked.

Parameters:
  - context: context.Context
  - identityID: string

Returns:
  - error: Batch revocation failures
*/
func (repository *PostgresRefreshTokenRepository) RevokeAll(context context.Context, identityID string) error {
	const query = `
		UPDATE iam.refreshtoken
		SET isrevoked = TRUE, revokedat = now()
		WHERE identityid = $1 AND isrevoked = FALSE`

	_, err := repository.pool.Exec(context, query, identityID)
	if err != nil {
		return fmt.Errorf("postgres_refresh_token_repo_revoke_all_failed: %w", err)
	}
	return nil
}

/*
RevokeOthers marks all active tokens for an identity as revoked, except for one.

Parameters:
  - context: context.Context
  - identityID: string
  - keepToken: string

Returns:
  - error: Filtered revocation failures
*/
func (repository *PostgresRefreshTokenRepository) RevokeOthers(context context.Context, identityID, keepToken string) error {
	const query = `
		UPDATE iam.refreshtoken
		SET isrevoked = TRUE, revokedat = now()
		WHERE identityid = $1 AND token != $2 AND isrevoked = FALSE`

	_, err := repository.pool.Exec(context, query, identityID, keepToken)
	if err != nil {
		return fmt.Errorf("postgres_refresh_token_repo_revoke_others_failed: %w", err)
	}
	return nil
}

/*
DeleteExpired permanently removes all tokens that have passed their expiration.

Description: Cleanup task to reclaim storage from stale ledger entries.

Parameters:
  - context: context.Context

Returns:
  - int64: Number of rows removed
  - error: Cleanup failures
*/
func (repository *PostgresRefreshTokenRepository) DeleteExpired(context context.Context) (int64, error) {
	const query = "DELETE FROM iam.refreshtoken WHERE expiresat <= NOW()"
	tag, err := repository.pool.Exec(context, query)
	if err != nil {
		return 0, fmt.Errorf("postgres_refresh_token_repo_delete_expired_failed: %w", err)
	}
	return tag.RowsAffected(), nil
}
