package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/aitorzubi/obratrace/internal/adapters/http"
	natsadapter "github.com/aitorzubi/obratrace/internal/adapters/nats"
	"github.com/aitorzubi/obratrace/internal/adapters/postgres"
	"github.com/aitorzubi/obratrace/internal/adapters/valkey"
	"github.com/aitorzubi/obratrace/internal/core/domain"
	"github.com/aitorzubi/obratrace/internal/core/ports"
	"github.com/aitorzubi/obratrace/internal/core/usecases"
	"github.com/aitorzubi/obratrace/internal/pkg/config"
	"github.com/aitorzubi/obratrace/internal/pkg/logging"
	"github.com/aitorzubi/obratrace/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("obratrace-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("obratrace-api", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache. The interface stays nil unless the connect succeeds: a typed-nil
	// *valkey.Cache inside the interface would defeat the services' nil guards.
	var cacheSvc ports.CacheService
	var cacheConn *valkey.Cache
	if cache, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable, serving without cache", "error", err)
	} else {
		defer cache.Close()
		cacheSvc = cache
		cacheConn = cache
	}

	// NATS publisher, same rule as the cache.
	var pub ports.EventPublisher
	if nc, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, events disabled", "error", err)
	} else {
		defer nc.Close()
		pub = nc
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Repos
	siteRepo := postgres.NewSiteRepo(db)

	// Use cases
	siteSvc := usecases.NewSiteService(siteRepo, cacheSvc, pub)
	progressSvc := usecases.NewProgressService(siteRepo, cacheSvc, pub)

	// Snapshots saved by other instances must evict our cached copy.
	if cacheSvc != nil {
		if sub, err := natsadapter.NewSubscriber(cfg.NATS.URL); err != nil {
			slog.Warn("nats subscriber unavailable", "error", err)
		} else {
			defer sub.Close()
			err := sub.SubscribeSiteSnapshots(ctx, func(ctx context.Context, site *domain.Site) error {
				return cacheSvc.Delete(ctx, usecases.SiteCacheKey(site.ID))
			})
			if err != nil {
				slog.Warn("snapshot eviction subscription failed", "error", err)
			}
		}
	}

	deps := &http.Dependencies{
		Sites:           siteSvc,
		Progress:        progressSvc,
		NATS:            natsConn,
		DB:              db,
		Cache:           cacheConn,
		SnapThresholdPx: cfg.Drawing.SnapThresholdPx,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    2 * 1024 * 1024, // traced shapes can carry thousands of vertices
		AppName:      "ObraTrace API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, https://*.obratrace.eus",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
