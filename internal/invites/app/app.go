package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/brandhub/internal/invites/http"
	"github.com/aussiebroadwan/brandhub/internal/invites/service"
	"github.com/aussiebroadwan/brandhub/internal/invites/store"
	"github.com/aussiebroadwan/brandhub/internal/invites/store/drivers/postgres"
	"github.com/aussiebroadwan/brandhub/internal/invites/store/drivers/sqlite"
	"github.com/aussiebroadwan/brandhub/pkg/jwtx"
	"github.com/aussiebroadwan/brandhub/pkg/otelx"
	"github.com/aussiebroadwan/brandhub/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	serviceName = "invites-service"
)

// Application encapsulates the invitation service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db            store.Store
	keys          *jwtx.KeySet
	verifier      jwtx.Verifier
	jwksRefresher *JWKSRefresher // nil with a static key
	traceShutdown func(context.Context) error

	// Services
	invitationService *service.InvitationService
	sweeper           *service.ExpirySweeper

	// HTTP server
	server        *http.Server
	router        *httpapi.Router
	cancelStreams context.CancelFunc
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: serviceName,
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	ctx := context.Background()

	shutdown, err := otelx.Setup(ctx, otelx.Config{
		ServiceName: serviceName,
		Version:     BuildVersion,
		Endpoint:    cfg.OTLPEndpoint,
		SampleRatio: cfg.TraceSampleRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	app.traceShutdown = shutdown

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	keys, refresher, err := InitVerifierKeys(ctx, cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize verification keys: %w", err)
	}
	app.keys = keys
	app.jwksRefresher = refresher
	app.verifier = jwtx.NewVerifierEdDSA(keys, cfg.Issuer, cfg.Audience, cfg.TokenLeeway)

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.sweeper.Start()
	if app.jwksRefresher != nil {
		app.jwksRefresher.Start()
	}

	app.logger.Info("invites service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"driver", app.cfg.DatabaseDriver,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down invites service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Event streams never finish on their own.
	app.cancelStreams()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.sweeper.Stop()
	if app.jwksRefresher != nil {
		app.jwksRefresher.Stop()
	}

	if err := app.traceShutdown(ctx); err != nil {
		app.logger.Error("error flushing traces", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("invites service stopped")
	return nil
}

// initDatabase opens the configured driver and applies migrations
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(app.cfg.DatabaseDSN, app.logger)
	default:
		db, err = sqlite.NewStore(app.cfg.DatabaseDSN)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	var notifier service.Notifier = service.LogNotifier{Logger: app.logger}
	if app.cfg.WebhookURL != "" {
		notifier = service.WebhookNotifier{
			URL:    app.cfg.WebhookURL,
			Secret: app.cfg.WebhookSecret,
			Client: &http.Client{Timeout: 10 * time.Second},
		}
		app.logger.Info("invitation emails delivered via webhook")
	} else {
		app.logger.Warn("no notification webhook configured, invitation emails are only logged")
	}

	app.invitationService = &service.InvitationService{
		Store:         app.db,
		Notifier:      notifier,
		TTL:           app.cfg.InvitationTTL,
		AcceptBaseURL: app.cfg.AcceptURL,
	}

	app.sweeper = service.NewExpirySweeper(
		app.db,
		notifier,
		app.logger,
		app.cfg.SweepInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys,
		app.verifier,
		BuildVersion,
		app.db,
		app.logger,
		app.cfg.CORSOrigins,
	)

	router.InvitationService = app.invitationService
	router.Sweeper = app.sweeper
	router.SweepSecret = app.cfg.SweepSecret
	router.ApplyRoutes()

	if app.cfg.SweepSecret == "" {
		app.logger.Warn("SWEEP_SECRET not set, sweep endpoint disabled")
	}

	app.router = router

	baseCtx, cancel := context.WithCancel(context.Background())
	app.cancelStreams = cancel

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
}
