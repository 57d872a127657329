// Package app assembles the codex service from configuration. The HTTP
// server and the Lambda entry point share it.
package app

import (
	"context"
	"fmt"
	"time"

	"codex-ledger/internal/cache"
	"codex-ledger/internal/config"
	"codex-ledger/internal/fetch"
	"codex-ledger/internal/handler"
	"codex-ledger/internal/ledger"
	"codex-ledger/internal/logger"
	"codex-ledger/internal/metrics"
	"codex-ledger/internal/provider"
	"codex-ledger/internal/service"
	"codex-ledger/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	dialRedisFunc = cache.Dial
	openPoolFunc  = func(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
		return pgxpool.New(ctx, dsn)
	}
	migrateFunc = func(ctx context.Context, pool *pgxpool.Pool) (int, error) {
		return ledger.Migrate(ctx, pool)
	}
)

// App holds the router plus whatever must be released on shutdown.
type App struct {
	Router *gin.Engine
	Codex  *service.CodexService

	closers []func()
}

// Build wires cache, providers, ledger and handlers. Background work such as
// the cache janitor stops when ctx is done.
func Build(ctx context.Context, cfg *config.Config, tracer trace.Tracer) (*App, error) {
	a := &App{}

	c := a.buildCache(ctx, cfg)

	upstream := fetch.New(
		fetch.WithTimeout(cfg.FetchTimeout),
		fetch.WithMaxRetries(cfg.FetchMaxRetries),
		fetch.WithBaseDelay(cfg.FetchBaseDelay),
		fetch.WithTracer(tracer),
		fetch.WithNotify(func(attempt int, err error, wait time.Duration) {
			logger.Warn("upstream attempt failed, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(err),
			)
		}),
	)
	market := service.NewMarketService(tracer,
		provider.NewCoinGeckoProvider(tracer, upstream, cfg.CoinGeckoBaseURL),
		provider.NewDexScreenerProvider(tracer, upstream, cfg.DexScreenerBaseURL),
		c,
	)

	store, err := a.buildStore(ctx, cfg, tracer)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Codex = service.NewCodexService(tracer, market, store, cfg.SupabaseKey)

	r := gin.New()
	r.Use(gin.Recovery(), otelgin.Middleware(tracing.ServiceName), metrics.Middleware())
	handler.New(tracer, a.Codex).RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	a.Router = r

	return a, nil
}

// Close releases connections opened by Build.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) buildCache(ctx context.Context, cfg *config.Config) cache.Cache {
	if cfg.CacheBackend == config.CacheRedis {
		client, err := dialRedisFunc(ctx, cfg.RedisURL)
		if err == nil {
			a.closers = append(a.closers, func() { _ = client.Close() })
			return cache.NewRedis(client, cfg.CacheTTL)
		}
		logger.Warn("redis unavailable, falling back to in-memory cache", zap.Error(err))
	}

	m := cache.NewMemory(cache.WithTTL(cfg.CacheTTL), cache.WithMaxEntries(cfg.CacheMaxEntries))
	interval := cfg.CacheTTL
	if interval <= 0 {
		interval = cache.DefaultTTL
	}
	go m.StartJanitor(ctx, interval)
	return m
}

// buildStore returns a nil store when the ledger is not configured, so each
// request reports the missing configuration instead of failing startup.
func (a *App) buildStore(ctx context.Context, cfg *config.Config, tracer trace.Tracer) (ledger.Store, error) {
	if !cfg.LedgerConfigured() {
		return nil, nil
	}

	if cfg.LedgerBackend == config.LedgerPostgres {
		pool, err := openPoolFunc(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		n, err := migrateFunc(ctx, pool)
		if err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("ledger migrations applied", zap.Int("count", n))
		return ledger.NewPostgresStore(pool, tracer), nil
	}

	restClient := fetch.New(
		fetch.WithTimeout(cfg.FetchTimeout),
		fetch.WithMaxRetries(0),
		fetch.WithTracer(tracer),
	)
	return ledger.NewRESTStore(tracer, restClient, cfg.SupabaseURL, cfg.SupabaseKey), nil
}
