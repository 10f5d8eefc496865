package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/storage/redis/v3"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"agencydesk/internal/audit"
	"agencydesk/internal/config"
	"agencydesk/internal/db"
	"agencydesk/internal/demo"
	"agencydesk/internal/generate"
	"agencydesk/internal/leads"
	"agencydesk/internal/logging"
	"agencydesk/internal/metrics"
	"agencydesk/internal/prompts"
	"agencydesk/internal/providers/dataforseo"
	"agencydesk/internal/providers/llm"
	"agencydesk/internal/ratelimit"
	"agencydesk/internal/report"
	"agencydesk/internal/server"
)

const auditFetchTimeout = 10 * time.Second

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.IsDev())
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("migrations completed")

	metrics.Init(prometheus.DefaultRegisterer, database, logger)

	router := llm.NewRouter(textProviders(ctx, cfg, logger)...)
	router.SetObserver(metrics.RecordProviderCall)
	if !router.Configured() {
		logger.Warn("no text generation provider configured; generation endpoints will answer 503")
	}

	keywordClient := dataforseo.New(dataforseo.Config{
		Login:    cfg.DataForSEOLogin,
		Password: cfg.DataForSEOPassword,
		BaseURL:  cfg.DataForSEOBaseURL,
		Timeout:  cfg.ProviderTimeout,
	})
	if !keywordClient.Configured() {
		logger.Warn("DataForSEO credentials not set; keyword and lead endpoints will answer 503")
	}

	catalogue, err := prompts.Load()
	if err != nil {
		logger.Fatal("failed to load prompt catalogue", zap.Error(err))
	}

	renderer, err := report.NewRenderer()
	if err != nil {
		logger.Fatal("failed to load report templates", zap.Error(err))
	}

	srv := server.New(cfg, logger)
	srv.RegisterRoutes(server.Services{
		Store:     database,
		Pinger:    database,
		Router:    router,
		Prompts:   catalogue,
		Auditor:   audit.NewAuditor(audit.NewFetcher(auditFetchTimeout, false), router, catalogue, logger),
		Generator: generate.New(router, catalogue, keywordClient, logger),
		Leads:     leads.NewService(keywordClient, router, catalogue, logger),
		Demo:      demo.NewService(database, logger),
		Renderer:  renderer,
		Limiter:   newLimiter(cfg, logger),
	})

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	if err := srv.Shutdown(); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}

// textProviders builds every provider with credentials. The configured default
// goes first so requests that name no provider use it.
func textProviders(ctx context.Context, cfg *config.Config, logger *zap.Logger) []llm.Provider {
	var providers []llm.Provider
	add := func(p llm.Provider, err error) {
		if err != nil {
			logger.Error("failed to create text provider", zap.Error(err))
			return
		}
		if p.Name() == cfg.DefaultProvider {
			providers = append([]llm.Provider{p}, providers...)
			return
		}
		providers = append(providers, p)
	}

	if cfg.OpenAIAPIKey != "" {
		p, err := llm.NewOpenAI(llm.Options{APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel, Timeout: cfg.ProviderTimeout})
		add(p, err)
	}
	if cfg.AnthropicAPIKey != "" {
		p, err := llm.NewAnthropic(llm.Options{APIKey: cfg.AnthropicAPIKey, Model: cfg.AnthropicModel, Timeout: cfg.ProviderTimeout})
		add(p, err)
	}
	if cfg.GeminiAPIKey != "" {
		p, err := llm.NewGemini(ctx, llm.Options{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel, Timeout: cfg.ProviderTimeout})
		add(p, err)
	}
	return providers
}

// newLimiter keeps windows in Redis when REDIS_URL is set, so limits hold
// across instances, and in process memory otherwise.
func newLimiter(cfg *config.Config, logger *zap.Logger) *ratelimit.Limiter {
	var store ratelimit.Store = ratelimit.NewMemoryStore()
	if cfg.RedisURL != "" {
		store = ratelimit.NewKVStore(redis.New(redis.Config{URL: cfg.RedisURL}))
		logger.Info("rate limit windows stored in redis")
	}

	return ratelimit.New(store, ratelimit.Config{
		Default:         ratelimit.Rule{Max: cfg.RateLimitMax, Window: cfg.RateLimitWindow},
		Expensive:       ratelimit.Rule{Max: cfg.RateLimitExpensiveMax, Window: cfg.RateLimitExpensiveWindow},
		ExpensiveGroups: ratelimit.DefaultExpensiveGroups,
		OnReject:        metrics.RecordRateLimited,
		Logger:          logger,
	})
}
