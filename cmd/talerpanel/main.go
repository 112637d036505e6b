package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	authadapter "github.com/dkindler/talerpanel/internal/adapter/driven/auth"
	sqliteadapter "github.com/dkindler/talerpanel/internal/adapter/driven/sqlite"
	taleradapter "github.com/dkindler/talerpanel/internal/adapter/driven/taler"
	httphandler "github.com/dkindler/talerpanel/internal/adapter/driving/http"
	"github.com/dkindler/talerpanel/internal/application"
	"github.com/dkindler/talerpanel/internal/config"
	"github.com/dkindler/talerpanel/internal/secretbox"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"probe_timeout", cfg.ProbeTimeout,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on the writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Derive the encryption key: configured secret key, with a
	// generated site-local salt as fallback material.
	salt, err := secretbox.LoadOrCreateSalt(filepath.Join(filepath.Dir(cfg.DBPath), ".talerpanel-salt"))
	if err != nil {
		return err
	}
	box := secretbox.New(cfg.SecretKey, salt)
	if cfg.SecretKey == "" {
		slog.Warn("TALERPANEL_SECRET_KEY not set, using generated site-local salt")
	}

	// 6. Wire adapters and services.
	settingsStore := sqliteadapter.NewSettingsRepo(db)
	merchantClient := taleradapter.NewClient(cfg.ProbeTimeout)
	authorizer := authadapter.NewStaticAuthorizer(cfg.AdminToken)

	resolver := application.NewResolver(box)
	sanitizer := application.NewSanitizer(box, authorizer)
	saveSvc := application.NewSaveService(settingsStore, merchantClient, sanitizer, resolver, slog.Default())
	orderSvc := application.NewOrderService(settingsStore, merchantClient, resolver, slog.Default())

	// 7. Create HTTP handler and server.
	handler := httphandler.NewHandler(settingsStore, saveSvc, orderSvc, slog.Default())
	mux := httphandler.NewServeMux(handler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("talerpanel started", "listen_addr", cfg.ListenAddr)

	// 8. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
