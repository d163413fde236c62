// Package main is the entry point for the Trip Companion API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pkordes/trip-companion/backend/internal/auth"
	"github.com/pkordes/trip-companion/backend/internal/cache"
	"github.com/pkordes/trip-companion/backend/internal/config"
	"github.com/pkordes/trip-companion/backend/internal/events"
	"github.com/pkordes/trip-companion/backend/internal/handler"
	"github.com/pkordes/trip-companion/backend/internal/middleware"
	"github.com/pkordes/trip-companion/backend/internal/repo"
	"github.com/pkordes/trip-companion/backend/internal/schedule"
	"github.com/pkordes/trip-companion/backend/internal/service"
	"github.com/pkordes/trip-companion/backend/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if cfg.MigrateOnStart {
		// goose speaks database/sql; borrow a connection from the pool.
		db := stdlib.OpenDBFromPool(pool)
		applied, err := migrations.Up(context.Background(), db)
		_ = db.Close()
		if err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("migrations applied", "count", applied)
	}

	// --- Cache ------------------------------------------------------------
	// A nil interface, not a nil *cache.TripList, disables caching.
	var tripCache service.TripListCache
	if rdb := cache.Connect(cfg.RedisAddr, cfg.RedisPassword); rdb != nil {
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			// Discovery falls back to Postgres on cache errors, so keep going.
			slog.Warn("redis unreachable, continuing without cache", "addr", cfg.RedisAddr, "error", err)
		}
		tripCache = cache.NewTripList(rdb, cache.DefaultKey, cfg.CacheTTL)
		slog.Info("discovery cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL.String())
	}

	// --- Events -----------------------------------------------------------
	var tripEvents service.TripEvents = events.Nop{}
	if cfg.AMQPURL != "" {
		pub, err := events.Dial(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			slog.Error("failed to connect to message broker", "error", err)
			os.Exit(1)
		}
		defer pub.Close()
		tripEvents = pub
		slog.Info("trip events enabled", "exchange", cfg.AMQPExchange)
	}

	// --- Services ---------------------------------------------------------
	tripRepo := repo.NewTripRepo(pool)
	tripSvc := service.NewTripService(tripRepo, tripCache, tripEvents, logger)
	discoverySvc := service.NewDiscoveryService(
		tripRepo,
		repo.NewViewerRepo(pool),
		tripCache,
		schedule.NewFormatter(cfg.Timezone),
		logger,
	)
	api := handler.NewServer(tripSvc, discoverySvc, auth.NewVerifier(cfg.JWTSecret))

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → MaxBodySize.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Mount("/", api.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
