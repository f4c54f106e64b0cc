// Copyright (c) 2026 Campora. All rights reserved.

// Command api is the entry point for the Campora HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Seed system roles, the permission catalog, and the bootstrap admin.
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campora/campora/internal/api"
	"github.com/campora/campora/internal/iam/auth"
	"github.com/campora/campora/internal/iam/rbac"
	"github.com/campora/campora/internal/platform/config"
	"github.com/campora/campora/internal/platform/constants"
	"github.com/campora/campora/internal/platform/migration"
	pgstore "github.com/campora/campora/internal/platform/postgres"
	redisstore "github.com/campora/campora/internal/platform/redis"
	"github.com/campora/campora/internal/platform/sec"
	"github.com/campora/campora/internal/records/faculty"
	"github.com/campora/campora/internal/records/student"
)

// tokenSweepInterval is how often expired refresh tokens are purged.
const tokenSweepInterval = 1 * time.Hour

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "campora"))
	slog.SetDefault(log)

	log.Info("[Campora] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "campora"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Token Service ──────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 7. RBAC Wiring & Seeding ──────────────────────────────────────────
	roleRepository := rbac.NewRoleRepository(pool)
	permissionRepository := rbac.NewPermissionRepository(pool)
	assignmentRepository := rbac.NewAssignmentRepository(pool)
	rbacService := rbac.NewService(roleRepository, permissionRepository, assignmentRepository)

	seeder := rbac.NewSeeder(roleRepository, permissionRepository, assignmentRepository, log)
	must(log, seeder.Seed(startupCtx), "seed rbac baseline")

	// ── 8. Auth Wiring ────────────────────────────────────────────────────
	identityRepository := auth.NewIdentityRepository(pool)
	refreshTokenRepository := auth.NewRefreshTokenRepository(pool)
	resetTokenRepository := auth.NewResetTokenRepository(rdb)
	verificationTokenRepository := auth.NewVerificationTokenRepository(rdb)
	authService := auth.NewService(
		identityRepository,
		refreshTokenRepository,
		resetTokenRepository,
		verificationTokenRepository,
		jwtSvc,
		rbacService,
	)
	authHandler := auth.NewHandler(authService, rbacService)

	must(log, auth.EnsureBootstrapAdmin(startupCtx, identityRepository, rbacService, cfg.BootstrapAdminPassword, log),
		"seed bootstrap admin")

	// ── 9. Records Wiring ─────────────────────────────────────────────────
	studentService := student.NewService(student.NewRepository(pool), log)
	facultyService := faculty.NewService(faculty.NewRepository(pool), log)

	// Registration provisions the matching profile row for these roles.
	authService.RegisterProfileRegistrar(rbac.RoleStudent, studentService)
	authService.RegisterProfileRegistrar(rbac.RoleFaculty, facultyService)

	studentHandler := student.NewHandler(studentService, rbacService)
	facultyHandler := faculty.NewHandler(facultyService, rbacService)
	rbacHandler := rbac.NewHandler(rbacService)

	// ── 10. Health handlers (wired with real dependency checkers) ─────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 11. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		RBAC:      rbacHandler,
		Student:   studentHandler,
		Faculty:   facultyHandler,
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, jwtSvc, handlers)

	// Periodic sweep of expired refresh tokens.
	go func() {
		ticker := time.NewTicker(tokenSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-serverCtx.Done():
				return
			case <-ticker.C:
				removed, err := authService.SweepExpiredTokens(serverCtx)
				if err != nil {
					log.Error("token_sweep_failed", slog.Any("error", err))
					continue
				}
				if removed > 0 {
					log.Info("token_sweep_completed", slog.Int64("removed", removed))
				}
			}
		}
	}()

	// ── 12. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
