package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-forge/backend/internal/audit"
	auditrepo "task-forge/backend/internal/audit/repository"
	authservice "task-forge/backend/internal/auth/service"
	"task-forge/backend/internal/config"
	"task-forge/backend/internal/db"
	"task-forge/backend/internal/security"
	"task-forge/backend/internal/server"
	sessionrepo "task-forge/backend/internal/session/repository"
	"task-forge/backend/internal/telemetry/otel"
	userrepo "task-forge/backend/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("config: DATABASE_URL must be set")
	}

	ctx := context.Background()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "task-forge-auth", false)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	hasher := security.NewHasher(cfg.BcryptCost)
	tokens := security.NewTokenProvider(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTL(), cfg.RefreshTTL())
	auth := authservice.NewAuthService(
		userrepo.NewPostgresRepository(database),
		sessionrepo.NewPostgresRepository(database),
		hasher,
		tokens,
	)

	router := server.NewRouter(server.Deps{
		Auth:         auth,
		Auditor:      audit.NewLogger(auditrepo.NewPostgresRepository(database)),
		HealthPinger: database,
		AccessTTL:    cfg.AccessTTL(),
		RefreshTTL:   cfg.RefreshTTL(),
		CORSOrigins:  cfg.CORSOrigins(),
		Tracer:       providers.TracerProvider.Tracer("task-forge/backend/internal/server"),
		Meter:        providers.MeterProvider.Meter("task-forge/backend/internal/server"),
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
