// Package app initializes and runs the book catalog server.
// It configures logging, storage, authentication and routing,
// and handles graceful shutdown.
package app

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/patric-chuzhbe/bookcatalog/internal/auth"
	"github.com/patric-chuzhbe/bookcatalog/internal/config"
	"github.com/patric-chuzhbe/bookcatalog/internal/credentials"
	"github.com/patric-chuzhbe/bookcatalog/internal/db/memorystorage"
	"github.com/patric-chuzhbe/bookcatalog/internal/gateway"
	"github.com/patric-chuzhbe/bookcatalog/internal/ipchecker"
	"github.com/patric-chuzhbe/bookcatalog/internal/logger"
	"github.com/patric-chuzhbe/bookcatalog/internal/router"
	"github.com/patric-chuzhbe/bookcatalog/internal/service"
)

// App owns the configuration, the storage and the HTTP handler of the
// running server.
type App struct {
	cfg         *config.Config
	db          *memorystorage.MemoryStorage
	httpHandler http.Handler
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing logger
// - setting up the in-memory storage
// - setting up the auth, book and GraphQL layers
// - setting up the router and middleware
func New(opts ...config.InitOption) (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New(opts...)
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	app.db, err = memorystorage.New()
	if err != nil {
		return nil, err
	}

	signingSecretKey, err := base64.URLEncoding.DecodeString(app.cfg.AuthTokenSigningSecretKey)
	if err != nil {
		return nil, fmt.Errorf("in internal/app/app.go/New(): error while decoding the token signing key: %w", err)
	}

	theAuth := auth.New(
		credentials.New(app.db, app.cfg.PasswordHashCost),
		signingSecretKey,
		app.cfg.AuthTokenTTL,
	)

	svc := service.New(app.db, app.cfg.EnforceOwnership)

	gw, err := gateway.New(theAuth, svc)
	if err != nil {
		return nil, err
	}

	ipChecker, err := ipchecker.New(app.cfg.TrustedSubnet)
	if err != nil {
		return nil, err
	}

	app.httpHandler = router.New(
		svc,
		gw,
		theAuth,
		ipChecker,
		app.cfg.AllowedOrigins,
	)

	return app, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.httpHandler
}

// Run starts the HTTP server with graceful shutdown support.
// It listens for system signals and cleans up resources upon termination.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return a.Serve(ctx)
}

// Serve runs the server until ctx is done, then shuts it down within the
// configured timeout and closes the storage.
func (a *App) Serve(ctx context.Context) error {
	logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Stopping the server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return a.db.Close()

	case err := <-serverErrCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}
