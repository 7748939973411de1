package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/core"
	apphttp "fintrack/internal/http"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

const (
	shutdownTimeout      = 30 * time.Second
	listCacheSize        = 16
	cacheCleanupInterval = 5 * time.Minute
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).Validate)

	logger.Info("Starting fintrack",
		"port", cfg.Port,
		applog.FieldOperation, applog.OpStartup)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid storage configuration", err)
	}
	storageBackend, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).
		CreateBackend(context.Background(), backendCfg)
	if err != nil {
		cli.Fatal(logger, "Failed to create storage backend", err)
	}

	cacheManager := cache.NewManager()
	opts := services.Options{
		StrictValidation: cfg.StrictValidation,
		Logger:           logger,
	}
	if cfg.ListCacheTTL > 0 {
		listCache := cache.NewLRUCache[[]core.Transaction](listCacheSize, cfg.ListCacheTTL)
		cacheManager.Register(listCache)
		cacheManager.StartCleanup(cacheCleanupInterval)
		opts.ListCache = listCache
	}

	// Events are optional: without a broker transactions are still stored.
	if cfg.AMQPURL != "" {
		publisher, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, transaction events disabled",
				applog.FieldComponent, applog.ComponentAMQP,
				applog.FieldError, err)
		} else {
			opts.Publisher = publisher
			logger.Info("AMQP publisher ready", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	svc := services.NewTransactionService(storageBackend.Store, opts)

	srv := apphttp.NewServer(":"+cfg.Port, svc, storageBackend.Connector, apphttp.Options{
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       15 * time.Second,
		IdleTimeout:        60 * time.Second,
		CacheManager:       cacheManager,
	})
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if err := svc.Close(); err != nil {
			logger.Warn("Failed to close publisher", applog.FieldError, err)
		}
		if err := storageBackend.Cleanup(shutdownCtx); err != nil {
			logger.Error("Failed to close database", applog.FieldError, err)
		}
	})

	logger.Info("HTTP server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Fatal(logger, "Server error", err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
