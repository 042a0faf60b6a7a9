package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/shopboard-dashboard-go/internal/config"
	"github.com/boddenberg/shopboard-dashboard-go/internal/handler"
	"github.com/boddenberg/shopboard-dashboard-go/internal/infra/cache"
	"github.com/boddenberg/shopboard-dashboard-go/internal/infra/client"
	"github.com/boddenberg/shopboard-dashboard-go/internal/infra/observability"
	"github.com/boddenberg/shopboard-dashboard-go/internal/infra/resilience"
	"github.com/boddenberg/shopboard-dashboard-go/internal/infra/storage"
	"github.com/boddenberg/shopboard-dashboard-go/internal/port"
	"github.com/boddenberg/shopboard-dashboard-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		// The logger level comes from config, so fall back to a default one.
		observability.NewLogger("info").Fatal("invalid configuration", zap.Error(err))
	}

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.String("listen_addr", cfg.ListenAddr()),
		zap.String("log_level", cfg.LogLevel),
		zap.String("api_base_url", cfg.APIBaseURL),
		zap.String("file_base_url", cfg.FileBaseURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.String("session_backend", cfg.SessionBackend),
		zap.Bool("send_permissions_header", cfg.SendPermissionsHeader),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "shopboard-dashboard")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	lookupCache := cache.New[any](cfg.CacheTTL)
	defer lookupCache.Stop()

	// --- Session storage ---
	var store port.SessionStorage
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisStore, err := storage.NewRedisStore(ctx, storage.RedisOptions{
			URL:      cfg.RedisURL,
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		cancel()
		if err != nil {
			logger.Fatal("failed to connect to redis session store", zap.Error(err))
		}
		defer redisStore.Close()
		store = redisStore
		logger.Info("session storage: redis", zap.String("addr", cfg.RedisAddr))
	default:
		store = storage.NewFileStore(cfg.SessionFile, cfg.SessionSecret)
		logger.Info("session storage: file",
			zap.String("path", cfg.SessionFile),
			zap.Bool("encrypted", cfg.SessionSecret != ""),
		)
	}

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker(client.ServiceName, client.CountsAsSuccess)

	// --- Session & API client ---
	session := service.NewSessionStore(store, logger)
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	api := client.New(httpClient, cfg.APIBaseURL, session, cb, client.Options{
		Resilience:            resilienceCfg,
		SendPermissionsHeader: cfg.SendPermissionsHeader,
	}, metrics, logger)

	// --- Services ---
	validator := service.NewValidator()
	perms := service.NewPermissionEvaluator(session, cfg.DefaultRoute)
	lookups := service.NewLookupService(api, lookupCache, metrics, logger)
	boards := service.NewBoardSet(service.BoardDeps{
		Backend:     api,
		Lookups:     lookups,
		Users:       session,
		Validator:   validator,
		FileBaseURL: cfg.FileBaseURL,
		Metrics:     metrics,
		Logger:      logger,
	})
	authSvc := service.NewAuthService(api, session, perms, validator, logger)
	adminSvc := service.NewAdminService(api, perms, validator, logger)

	// Per-user state must not survive a change of operator.
	authSvc.OnSessionChange(lookups.Purge)
	authSvc.OnSessionChange(boards.Reset)

	if err := authSvc.Restore(context.Background()); err != nil {
		logger.Warn("session restore failed, starting signed out", zap.Error(err))
	}

	// --- Router ---
	router := handler.NewRouter(handler.Deps{
		Auth:             authSvc,
		Boards:           boards,
		Admin:            adminSvc,
		Lookups:          lookups,
		Metrics:          metrics,
		Circuit:          api,
		SessionBackend:   cfg.SessionBackend,
		TracingEnabled:   cfg.OTLPEndpoint != "",
		PermissionHeader: cfg.SendPermissionsHeader,
	}, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
