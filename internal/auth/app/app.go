package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/halcyondigital/accounts/internal/auth/http"
	"github.com/halcyondigital/accounts/internal/auth/ratelimit"
	"github.com/halcyondigital/accounts/internal/auth/service"
	"github.com/halcyondigital/accounts/internal/auth/store"
	"github.com/halcyondigital/accounts/internal/auth/store/drivers/sqlite"
	"github.com/halcyondigital/accounts/pkg/cryptox"
	"github.com/halcyondigital/accounts/pkg/jwtx"
	"github.com/halcyondigital/accounts/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the accounts service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	signer   *jwtx.EdDSASigner
	verifier jwtx.Verifier

	registerService  *service.RegisterService
	loginService     *service.LoginService
	twoFactorService *service.TwoFactorService
	accountService   *service.AccountService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "accounts-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initSessionKeys(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("accounts service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down accounts service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("accounts service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initSessionKeys mints the per-process Ed25519 signing key. Keys are
// ephemeral: a restart invalidates every outstanding session, which is the
// intended behavior for this service.
func (app *Application) initSessionKeys() error {
	pemKey, err := cryptox.GenerateEd25519Key()
	if err != nil {
		return fmt.Errorf("failed to generate session key: %w", err)
	}

	signer, err := jwtx.NewSignerEdDSA("session-"+time.Now().UTC().Format("20060102150405"), pemKey)
	if err != nil {
		return fmt.Errorf("failed to build session signer: %w", err)
	}

	app.signer = signer
	app.verifier = jwtx.NewVerifierEdDSA(signer, app.cfg.Issuer)
	app.logger.Info("ephemeral session key generated", "kid", signer.KID(), "alg", signer.Alg())
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	twoFactorService := &service.TwoFactorService{
		Store:   app.db,
		Issuer:  app.cfg.Issuer,
		Limiter: ratelimit.NewFixedWindow(app.cfg.VerifyLimit),
	}

	app.registerService = &service.RegisterService{
		Store:   app.db,
		Limiter: ratelimit.NewFixedWindow(app.cfg.RegisterLimit),
	}
	app.loginService = &service.LoginService{
		Store:     app.db,
		Signer:    app.signer,
		TwoFactor: twoFactorService,
		Limiter:   ratelimit.NewFixedWindow(app.cfg.LoginLimit),
		Issuer:    app.cfg.Issuer,
		TokenTTL:  app.cfg.SessionTTL,
	}
	app.twoFactorService = twoFactorService
	app.accountService = &service.AccountService{Store: app.db}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.RegisterService = app.registerService
	router.LoginService = app.loginService
	router.TwoFactorService = app.twoFactorService
	router.AccountService = app.accountService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
