package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gestaofin/orcamento-bfa-go/internal/config"
	"github.com/gestaofin/orcamento-bfa-go/internal/domain"
	"github.com/gestaofin/orcamento-bfa-go/internal/handler"
	"github.com/gestaofin/orcamento-bfa-go/internal/infra/cache"
	"github.com/gestaofin/orcamento-bfa-go/internal/infra/observability"
	"github.com/gestaofin/orcamento-bfa-go/internal/infra/resilience"
	"github.com/gestaofin/orcamento-bfa-go/internal/infra/supabase"
	"github.com/gestaofin/orcamento-bfa-go/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = godotenv.Load()

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Duration("jwt_refresh_ttl", cfg.JWTRefreshTTL),
	)

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "orcamento-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Caches ---
	approvalCache := cache.New[[]domain.ApprovalItem](cfg.CacheTTL)
	hierarchyCache := cache.New[*domain.AccountTree](cfg.CacheTTL)
	kpiCache := cache.New[*domain.KPISummary](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("supabase")
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Supabase client (PostgREST + edge functions) ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	supabaseClient := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		cb,
		resilienceCfg,
		logger,
	)
	logger.Info("using Supabase as data backend", zap.String("supabase_url", cfg.SupabaseURL))

	// --- Services ---
	approvalSvc := service.NewApprovalService(supabaseClient, approvalCache, metrics, logger)
	hierarchySvc := service.NewHierarchyService(supabaseClient, supabaseClient, hierarchyCache, metrics, logger)
	kpiSvc := service.NewKPIService(supabaseClient, supabaseClient, kpiCache, bulkhead, metrics, logger)
	orgSvc := service.NewOrgService(supabaseClient, supabaseClient, metrics, logger)
	budgetSvc := service.NewBudgetService(supabaseClient, kpiCache, metrics, logger)
	transactionSvc := service.NewTransactionService(supabaseClient, kpiCache, metrics, logger)
	registrySvc := service.NewRegistryService(supabaseClient, metrics, logger)
	userSvc := service.NewUserService(supabaseClient, supabaseClient, metrics, logger)
	authSvc := service.NewAuthService(supabaseClient, cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, logger)

	// --- Router ---
	router := handler.NewRouter(&handler.Services{
		Approvals:    approvalSvc,
		Hierarchy:    hierarchySvc,
		KPIs:         kpiSvc,
		Org:          orgSvc,
		Budgets:      budgetSvc,
		Transactions: transactionSvc,
		Registry:     registrySvc,
		Users:        userSvc,
		Auth:         authSvc,
	}, metrics, cfg.CORSOrigins, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
