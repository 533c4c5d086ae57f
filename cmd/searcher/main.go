package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/vkusplato/menu-search/internal/analytics"
	"github.com/vkusplato/menu-search/internal/catalog"
	"github.com/vkusplato/menu-search/internal/ratelimit"
	"github.com/vkusplato/menu-search/internal/search"
	"github.com/vkusplato/menu-search/internal/search/index"
	"github.com/vkusplato/menu-search/internal/search/synonyms"
	"github.com/vkusplato/menu-search/internal/searcher/cache"
	"github.com/vkusplato/menu-search/internal/searcher/handler"
	"github.com/vkusplato/menu-search/pkg/config"
	"github.com/vkusplato/menu-search/pkg/health"
	"github.com/vkusplato/menu-search/pkg/kafka"
	"github.com/vkusplato/menu-search/pkg/logger"
	"github.com/vkusplato/menu-search/pkg/metrics"
	"github.com/vkusplato/menu-search/pkg/middleware"
	"github.com/vkusplato/menu-search/pkg/postgres"
	pkgredis "github.com/vkusplato/menu-search/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting menu search service", "port", cfg.Server.Port)

	dict, err := synonyms.Load(cfg.Search.SynonymsPath)
	if err != nil {
		slog.Warn("synonyms file unavailable, using built-in dictionary",
			"path", cfg.Search.SynonymsPath, "error", err)
		dict = synonyms.Default()
	}

	pg, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pg.Close()
	store := catalog.NewStore(pg)

	var resultCache *cache.ResultCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, result caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		resultCache = cache.New(redisClient, cfg.Redis.CacheTTL)
		slog.Info("result cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var collector *analytics.Collector
	analyticsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents)
	defer analyticsProducer.Close()
	collector = analytics.NewCollector(analyticsProducer)
	defer collector.Close()
	slog.Info("analytics collector started", "topic", cfg.Kafka.Topics.SearchEvents)

	indexCache := index.NewCache(cfg.Search.IndexTTL)
	engine := search.NewEngine(dict)

	// Any catalog change drops both caches so the next search reindexes.
	invalidation := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.CatalogEvents,
		func(ctx context.Context, key, value []byte) error {
			event, err := kafka.DecodeJSON[catalog.ChangeEvent](value)
			if err != nil {
				slog.Warn("malformed catalog event", "error", err)
				return nil
			}
			indexCache.Invalidate()
			if _, err := resultCache.Invalidate(ctx); err != nil {
				slog.Warn("result cache flush failed", "error", err)
			}
			slog.Info("caches invalidated by catalog change",
				"action", event.Action, "entity", event.Entity, "id", event.ID)
			return nil
		})
	defer invalidation.Close()
	go func() {
		if err := invalidation.Start(ctx); err != nil && ctx.Err() == nil {
			slog.Error("catalog event consumer error", "error", err)
		}
	}()

	m := metrics.New()
	var metricsShutdown func(context.Context) error
	if cfg.Metrics.Enabled {
		metricsShutdown = metrics.StartServer(cfg.Metrics.Port)
		slog.Info("metrics server started", "port", cfg.Metrics.Port)
	}

	checker := health.NewChecker()
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if err := pg.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := handler.New(handler.Deps{
		Source:     store,
		IndexCache: indexCache,
		Engine:     engine,
		Results:    resultCache,
		Collector:  collector,
		Metrics:    m,
		MaxResults: cfg.Search.MaxResults,
		MinScore:   cfg.Search.MinScore,
	})

	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.New(cfg.RateLimit.PerClient, cfg.RateLimit.Window)
		limiter.OnReject = m.RateLimitedTotal.Inc
		defer limiter.Close()
		chain = limiter.Middleware(chain)
	}
	chain = middleware.Metrics(m)(chain)
	chain = middleware.CORS(middleware.DefaultCORSConfig())(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
		if metricsShutdown != nil {
			if err := metricsShutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}
	}()

	slog.Info("menu search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("menu search service stopped")
}
