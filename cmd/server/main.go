package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/debtsolver/internal/auth"
	"github.com/mmynk/debtsolver/internal/config"
	"github.com/mmynk/debtsolver/internal/infra"
	"github.com/mmynk/debtsolver/internal/metrics"
	"github.com/mmynk/debtsolver/internal/middleware"
	"github.com/mmynk/debtsolver/internal/rpc"
	"github.com/mmynk/debtsolver/internal/service"
	"github.com/mmynk/debtsolver/internal/storage"
	"github.com/mmynk/debtsolver/internal/storage/postgres"
	"github.com/mmynk/debtsolver/internal/storage/sqlite"
	"github.com/mmynk/debtsolver/pkg/logging"
)

func main() {
	mintToken := flag.String("mint-token", "", "print a bearer token for the named principal and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	if *mintToken != "" {
		if cfg.AuthSecret == "" {
			logger.Error("AUTH_SECRET must be set to mint tokens")
			os.Exit(1)
		}
		token, err := auth.NewJWTManager(cfg.AuthSecret, cfg.TokenTTL).Generate(*mintToken)
		if err != nil {
			logger.Error("Failed to mint token", "error", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("Failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("Failed to close redis", "error", err)
			}
		}()
		slog.Info("Idempotency cache enabled", "redis", cfg.RedisURL)
	}

	registry := prometheus.NewRegistry()
	collectors := metrics.New(registry)

	svc := service.NewLedgerService(store, service.Options{
		Logger:           logger,
		Cache:            cache,
		Metrics:          collectors,
		DefaultGroupSize: cfg.MaxGroupSize,
		IdempotencyTTL:   cfg.IdempotencyTTL,
	})
	if err := svc.Load(ctx); err != nil {
		logger.Error("Failed to replay transaction journal", "error", err)
		os.Exit(1)
	}

	// Auth wraps logging so the request log can carry the principal.
	interceptors := []connect.Interceptor{}
	if cfg.AuthSecret != "" {
		manager := auth.NewJWTManager(cfg.AuthSecret, cfg.TokenTTL)
		interceptors = append(interceptors, middleware.RequireAuth(manager))
		slog.Info("Bearer token auth enabled")
	} else {
		slog.Warn("AUTH_SECRET not set, serving unauthenticated")
	}
	interceptors = append(interceptors, middleware.LoggingInterceptor(logger))

	mux := http.NewServeMux()

	// Register the Connect service
	ledgerPath, ledgerHandler := rpc.NewLedgerServiceHandler(svc, connect.WithInterceptors(interceptors...))
	mux.Handle(ledgerPath, ledgerHandler)

	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	// Add logging and CORS middleware
	loggedHandler := loggingMiddleware(corsMiddleware(mux))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	h2cHandler := h2c.NewHandler(loggedHandler, &http2.Server{})

	srv := &http.Server{
		Addr:    cfg.Address(),
		Handler: h2cHandler,
	}

	srvErrCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", srv.Addr)
		srvErrCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server exited cleanly")
}

// openStore picks the journal backend: postgres when DATABASE_URL is set,
// otherwise the embedded sqlite file.
func openStore(ctx context.Context, cfg config.Config) (storage.Store, func(), error) {
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		store, err := postgres.New(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("prepare postgres store: %w", err)
		}
		slog.Info("Storage initialized", "backend", "postgres")
		return store, func() {
			if err := store.Close(); err != nil {
				slog.Warn("Failed to close store", "error", err)
			}
		}, nil
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite store: %w", err)
	}
	slog.Info("Storage initialized", "backend", "sqlite", "database", cfg.DBPath)
	return store, func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close store", "error", err)
		}
	}, nil
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
