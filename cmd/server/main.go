package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"campus/internal/audit"
	authhandler "campus/internal/auth/handler"
	authservice "campus/internal/auth/service"
	"campus/internal/dashboard"
	httpapi "campus/internal/http"
	jwttoken "campus/internal/jwt_token"
	"campus/internal/platform/config"
	"campus/internal/platform/httpserver"
	"campus/internal/platform/logger"
	"campus/internal/platform/metrics"
	"campus/internal/platform/middleware"
	taskhandler "campus/internal/tasks/handler"
	taskservice "campus/internal/tasks/service"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	m := metrics.New()

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	auditWorker := audit.NewWorker(audit.NewInMemoryStore(), 256, log)
	jwt := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)

	auth := authservice.New(
		b.users,
		b.verifications,
		b.revocations,
		jwt,
		b.mailer,
		authservice.Config{TokenTTL: cfg.TokenTTL, VerificationTTL: cfg.VerificationTTL},
		authservice.WithLogger(log),
		authservice.WithMetrics(m),
		authservice.WithTracer(otel.Tracer("campus/auth")),
		authservice.WithAuditPublisher(auditWorker),
	)
	if cfg.SeedDemoAccounts {
		if err := auth.SeedDemoAccounts(ctx, authservice.DemoAccounts); err != nil {
			return fmt.Errorf("seed demo accounts: %w", err)
		}
		log.Info("demo accounts seeded", "count", len(authservice.DemoAccounts))
	}

	requireAuth := middleware.RequireAuth(jwttoken.NewMiddlewareValidator(jwt), b.revocations, log)
	router := httpapi.NewRouter(
		httpapi.Config{Logger: log, Metrics: m, Health: b.health},
		authhandler.New(auth, log, requireAuth),
		taskhandler.New(taskservice.New(b.tasks, taskservice.WithLogger(log), taskservice.WithMetrics(m)), log, requireAuth),
		dashboard.NewHandler(dashboard.NewService(b.users, log), log, requireAuth),
	)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return auditWorker.Run(gctx)
	})
	g.Go(func() error {
		log.Info("starting campus server", "addr", cfg.Addr, "env", cfg.Env, "backends", b.describe())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}
