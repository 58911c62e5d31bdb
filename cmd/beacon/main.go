package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/beaconlabs/beacon/internal/config"
	"github.com/beaconlabs/beacon/internal/database"
	"github.com/beaconlabs/beacon/internal/geo"
	"github.com/beaconlabs/beacon/internal/httpserver"
	"github.com/beaconlabs/beacon/internal/metrics"
	"github.com/beaconlabs/beacon/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg)
	defer logger.Sync()

	logger.Info("starting Beacon",
		zap.String("env", cfg.Server.Env),
		zap.String("addr", cfg.Server.Addr),
	)

	m := metrics.NewMetrics("beacon")

	// ClickHouse holds the event datasets and is required.
	ch, err := database.NewClickHouseDB(cfg.ClickHouse.DSN(), cfg.ClickHouse.MaxConns, cfg.ClickHouse.IdleConns)
	if err != nil {
		logger.Fatal("ClickHouse not available", zap.Error(err))
	}
	defer ch.Close()
	logger.Info("connected to ClickHouse")

	store := storage.NewClickHouseStore(ch.DB, m)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := store.EnsureSchema(ctx)
		cancel()
		if err != nil {
			logger.Fatal("failed to ensure dataset schema", zap.Error(err))
		}
	}

	// Redis backs the response cache; without it every read computes.
	var redisClient *redis.Client
	rdb, err := database.NewRedisDB(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn("Redis not available, response caching disabled", zap.Error(err))
	} else {
		defer rdb.Close()
		redisClient = rdb.Client
		logger.Info("connected to Redis")
	}

	// Optional MaxMind fallback for requests without proxy geo headers.
	var geoProvider *geo.MaxMindProvider
	if cfg.Geo.Enabled {
		geoProvider, err = geo.NewMaxMindProvider(cfg.Geo.DatabasePath)
		if err != nil {
			logger.Warn("geo database not available, header geo only", zap.Error(err))
			geoProvider = nil
		} else {
			defer geoProvider.Close()
		}
	}

	handler := httpserver.NewServer(&httpserver.Dependencies{
		Store:   store,
		Redis:   redisClient,
		Geo:     geoProvider,
		Config:  cfg,
		Logger:  logger,
		Metrics: m,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func setupLogger(cfg *config.Config) *zap.Logger {
	var zapCfg zap.Config

	if cfg.IsDevelopment() {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	switch cfg.Log.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	logger, err := zapCfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to create logger: %v", err))
	}

	return logger
}
