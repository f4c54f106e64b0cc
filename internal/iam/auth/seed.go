// Copyright (c) 2026 Campora. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campora/campora/internal/iam/rbac"
	"github.com/campora/campora/internal/platform/apperr"
	"github.com/campora/campora/internal/platform/sec"
	"github.com/campora/campora/pkg/uuid"
)

// BootstrapAdminEmail is the login of the default administrator account.
const BootstrapAdminEmail = "admin@campora.io"

/*
EnsureBootstrapAdmin creates the default administrator identity if absent.

Description: Runs on every startup after migrations and RBAC seeding.
The password is only consulted when the account does not exist yet, so
rotating BOOTSTRAP_ADMIN_PASSWORD has no effect on an existing installation.

Parameters:
  - context: context.Context
  - identityRepo: IdentityRepository
  - roles: RoleDirectory
  - password: string (Initial password for a fresh installation)
  - logger: *slog.Logger

Returns:
  - error: Storage failures
*/
func EnsureBootstrapAdmin(
	context context.Context,
	identityRepo IdentityRepository,
	roles RoleDirectory,
	password string,
	logger *slog.Logger,
) error {
	existing, err := identityRepo.FindByEmail(context, BootstrapAdminEmail)
	if err == nil {
		// Re-assert the role binding; AssignByName is a no-op when held
		return roles.AssignByName(context, existing.ID, rbac.RoleAdmin)
	}
	if !errors.Is(err, apperr.NotFound("Identity")) {
		return fmt.Errorf("auth_seed_admin_lookup_failed: %w", err)
	}

	hashedPassword, err := sec.HashPassword(password)
	if err != nil {
		return fmt.Errorf("auth_seed_admin_hash_failed: %w", err)
	}

	admin := &Identity{
		ID:            uuid.New(),
		Email:         BootstrapAdminEmail,
		PasswordHash:  hashedPassword,
		FullName:      "System Administrator",
		IsActive:      true,
		EmailVerified: true,
	}

	if err := identityRepo.Create(context, admin); err != nil {
		return fmt.Errorf("auth_seed_admin_create_failed: %w", err)
	}

	if err := roles.AssignByName(context, admin.ID, rbac.RoleAdmin); err != nil {
		return fmt.Errorf("auth_seed_admin_assign_failed: %w", err)
	}

	logger.Info("bootstrap_admin_created", slog.String("email", BootstrapAdminEmail))
	return nil
}
