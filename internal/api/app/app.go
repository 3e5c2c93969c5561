package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/dds2/internal/api/http"
	"github.com/aussiebroadwan/dds2/internal/api/service"
	"github.com/aussiebroadwan/dds2/internal/api/store/drivers/sqlite"
	"github.com/aussiebroadwan/dds2/pkg/blobx"
	"github.com/aussiebroadwan/dds2/pkg/cryptox"
	"github.com/aussiebroadwan/dds2/pkg/jwtx"
	"github.com/aussiebroadwan/dds2/pkg/metricsx"
	"github.com/aussiebroadwan/dds2/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags "-X ...".
var BuildVersion = "v0.1.0"

// Application encapsulates the API process with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db         *sqlite.Store
	blobs      blobx.Store
	keyManager *jwtx.KeyManager
	metrics    *metricsx.Metrics

	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates an Application with every dependency initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "dds2-api",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metricsx.New(),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(cfg.PepperFile)
	if err := cryptox.LoadPepper(); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := app.initBlobs(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	keyManager, err := InitKeys(cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize JWT keys: %w", err)
	}
	app.keyManager = keyManager

	app.housekeepingService = service.NewHousekeepingService(app.db, app.logger, cfg.HousekeepingInterval)
	app.initHTTP()

	return app, nil
}

// Handler exposes the routed handler, for tests and embedding.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("dds2 api starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		_ = app.db.Close()
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

// Shutdown drains in-flight requests, stops the worker and closes the store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down dds2 api...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("dds2 api stopped")
	return nil
}

// initDatabase opens the database and applies migrations.
func (app *Application) initDatabase() error {
	dsn := app.cfg.DatabaseFile
	if dsn != sqlite.MemoryDSN {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", dsn)
	}
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

// initBlobs opens the object store for uploaded files.
func (app *Application) initBlobs(ctx context.Context) error {
	bc := app.cfg.Blob
	switch bc.Driver {
	case "", "fs":
		fsStore, err := blobx.NewFSStore(bc.Dir)
		if err != nil {
			return fmt.Errorf("failed to open blob directory: %w", err)
		}
		app.blobs = fsStore
		app.logger.Info("blob storage ready", "driver", "fs", "dir", bc.Dir)

	case "s3":
		s3Store, err := blobx.NewS3Store(ctx, blobx.S3Config{
			Bucket:    bc.S3.Bucket,
			Region:    bc.S3.Region,
			Endpoint:  bc.S3.Endpoint,
			AccessKey: bc.S3.AccessKeyID,
			SecretKey: bc.S3.SecretAccessKey,
			PathStyle: bc.S3.Endpoint != "",
		})
		if err != nil {
			return fmt.Errorf("failed to initialize s3 blob storage: %w", err)
		}
		if err := s3Store.EnsureBucket(ctx); err != nil {
			return err
		}
		app.blobs = s3Store
		app.logger.Info("blob storage ready", "driver", "s3", "bucket", bc.S3.Bucket, "endpoint", bc.S3.Endpoint)

	default:
		return fmt.Errorf("unknown blob driver %q", bc.Driver)
	}
	return nil
}

// initHTTP builds the services, the router and the server.
func (app *Application) initHTTP() {
	base := service.Base{Store: app.db}

	router := httpapi.NewRouter(
		app.keyManager.KeySet,
		app.keyManager.Verifier,
		BuildVersion,
		app.db,
		app.blobs,
		app.logger,
	)
	router.Metrics = app.metrics
	router.MaxUploadBytes = app.cfg.MaxUploadBytes

	router.TokenService = &service.TokenService{
		Base:       base,
		KeyManager: app.keyManager,
		Metrics:    app.metrics,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}
	router.BootstrapService = &service.BootstrapService{Base: base, Token: app.cfg.BootstrapToken}
	router.MFAService = &service.MFAService{Base: base, Issuer: app.cfg.Issuer}
	router.UserService = &service.UserService{Base: base}
	router.ProfileService = &service.ProfileService{Base: base}
	router.TenantService = &service.TenantService{Base: base}
	router.RoleService = &service.RoleService{Base: base}
	router.TagService = &service.TagService{Base: base}
	router.CredentialService = &service.StorageCredentialService{Base: base}
	router.DomainService = &service.DomainService{Base: base}
	router.SenderService = &service.SenderService{Base: base}
	router.AttachmentService = &service.AttachmentService{Base: base, Blobs: app.blobs, Metrics: app.metrics}
	router.BroadcastService = &service.BroadcastService{Base: base}
	router.DataSetService = &service.DataSetService{Base: base, Blobs: app.blobs, Metrics: app.metrics}
	router.BalanceService = &service.BalanceService{Base: base, Metrics: app.metrics}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
