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

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"receiptpanel/internal/caching"
	"receiptpanel/internal/common"
	"receiptpanel/internal/config"
	"receiptpanel/internal/handlers"
	"receiptpanel/internal/jobs"
	"receiptpanel/internal/jobs/background"
	"receiptpanel/internal/metrics"
	"receiptpanel/internal/middleware"
	"receiptpanel/internal/repositories"
	"receiptpanel/internal/services"
	"receiptpanel/internal/storage"
	"receiptpanel/pkg/database"
)

const (
	version    = "1.0.0"
	apiVersion = "v1"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	if cfg.GeneratedJWTSecret {
		logger.Warn("JWT_SECRET not set, using a generated secret; admin tokens will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := database.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, logger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	repos := repositories.New(pool)
	uow := repositories.NewUnitOfWork(pool)

	// Dashboard cache
	var cache caching.CacheService
	if cfg.CacheEnabled() {
		cache = caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
		defer cache.Close()
	}

	// Export archive storage
	var store storage.ObjectStore
	if cfg.ArchiveEnabled() {
		store, err = storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
		if err != nil {
			return fmt.Errorf("object storage: %w", err)
		}
		if err := store.EnsureBucket(ctx, cfg.ExportBucket); err != nil {
			logger.Warn("export bucket unavailable, archives disabled", slog.String("bucket", cfg.ExportBucket), slog.Any("error", err))
			store = nil
		}
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Services
	authService := services.NewAuthService(repos.Admins, cfg.JWTSecret, cfg.JWTTTL, logger)
	licenseService := services.NewLicenseService(repos, uow, m, logger)
	deviceService := services.NewDeviceService(repos, logger)
	sessionService := services.NewSessionService(repos, uow, m, logger)
	usageService := services.NewUsageService(repos, uow, cache, m, logger)
	exportService := services.NewExportService(repos.Receipts, store, cfg.ExportBucket, logger)

	if err := authService.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword, cfg.AdminEmail); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	// Background sweeps
	sweeper := jobs.NewSweeper(repos, cache, m, cfg.DeviceIdleTimeout, logger)
	scheduler, err := background.NewJobScheduler(ctx, sweeper, cfg.SweepInterval, logger)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			logger.Error("scheduler shutdown failed", slog.Any("error", err))
		}
	}()

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = common.NewRequestValidator()

	e.Use(echoMiddleware.RequestID())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{AllowOrigins: cfg.AllowedOrigins}))
	e.Pre(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.BodyLimit("1M"))
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.VersionHeader(version, apiVersion))

	handlers.RegisterRoutes(e, handlers.Router{
		Health:   handlers.NewHealthHandlers(pool, cache, registry, version),
		Auth:     handlers.NewAuthHandlers(authService, logger),
		Licenses: handlers.NewLicenseHandlers(licenseService, logger),
		Users:    handlers.NewUserHandlers(deviceService, logger),
		Sessions: handlers.NewSessionHandlers(sessionService, logger),
		Usage:    handlers.NewUsageHandlers(usageService, exportService, logger),
	}, authService, middleware.NewAuditMiddleware(logger))

	addr := fmt.Sprintf(":%d", cfg.Port)
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("receipt panel server starting",
			slog.String("version", version),
			slog.String("addr", addr),
			slog.String("environment", cfg.Environment),
			slog.Bool("cache", cfg.CacheEnabled()),
			slog.Bool("archive", store != nil),
			slog.Any("jobs", scheduler.JobNames()))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
