package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/user/backlink-reclaim/internal/adapter/memory"
	"github.com/user/backlink-reclaim/internal/adapter/postgres"
	redis_adapter "github.com/user/backlink-reclaim/internal/adapter/redis"
	"github.com/user/backlink-reclaim/internal/app"
	"github.com/user/backlink-reclaim/internal/delivery/http/handler"
	"github.com/user/backlink-reclaim/internal/delivery/http/router"
	"github.com/user/backlink-reclaim/internal/repository"
	"github.com/user/backlink-reclaim/internal/usecase"
	"github.com/user/backlink-reclaim/pkg/config"
	"github.com/user/backlink-reclaim/pkg/logger"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// --- Logger ---
	logLevel := logger.ParseLevel(cfg.LogLevel)
	logger.Init(os.Stdout, logLevel)
	slog.Info("Logger initialized", "level", logLevel.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Rate Limiter ---
	var limiter repository.RateLimiter
	switch cfg.RateLimitBackend {
	case config.RateLimitRedis:
		rdb, err := redis_adapter.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			slog.Error("Unable to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		limiter = redis_adapter.NewRateLimiter(rdb)
		slog.Info("Redis rate limiter established", "addr", cfg.RedisAddr)
	case config.RateLimitDisabled:
		limiter = memory.NoopRateLimiter{}
		slog.Warn("Rate limiting is disabled")
	default:
		limiter = memory.NewRateLimiter()
		slog.Info("In-memory rate limiter established")
	}

	// --- Scan History ---
	var history repository.ScanRepository
	if cfg.PostgresURL != "" {
		dbpool, err := postgres.NewPool(ctx, cfg.PostgresURL)
		if err != nil {
			slog.Error("Unable to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbpool.Close()

		scanRepo := postgres.NewScanRepo(dbpool)
		if err := scanRepo.Migrate(ctx); err != nil {
			slog.Error("Unable to migrate database", "error", err)
			os.Exit(1)
		}
		history = scanRepo
		slog.Info("PostgreSQL scan history established")
	} else {
		slog.Info("POSTGRES_URL not set, scan history disabled")
	}

	// --- Use Cases ---
	scanner, cleanup := app.NewScanner(cfg, limiter, history)
	defer cleanup()
	historyUseCase := usecase.NewHistoryUseCase(history)

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(scanner, historyUseCase, cfg.ScanDeadline, cfg.DebugResponses)
	httpRouter := router.New(apiHandler)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httpRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.ScanDeadline + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", "port", cfg.ServerPort, "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ScanDeadline+5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}
