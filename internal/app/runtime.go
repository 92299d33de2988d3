package app

import (
	"context"
	"fmt"
	"time"

	"shopledger/internal/config"
	"shopledger/internal/core/calendar"
	"shopledger/internal/domain/auth"
	"shopledger/internal/infrastructure/cache"
	"shopledger/internal/infrastructure/filestore"
	"shopledger/internal/infrastructure/storage/memory"
	"shopledger/internal/infrastructure/storage/postgres"
	"shopledger/pkg/logger"
)

// Pinger is a dependency probed by readiness checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Runtime is a fully wired process: storage, cache, media and services.
type Runtime struct {
	Services *Services
	Backend  Backend
	Media    *filestore.Local
	Checks   map[string]Pinger

	pool  *postgres.Pool
	cache *cache.DashboardCache
}

// Open connects the configured storage, applies the schema and wires services.
func Open(ctx context.Context, cfg config.Config) (*Runtime, error) {
	clock, err := calendar.LoadClock(cfg.ShopTimezone)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{Checks: make(map[string]Pinger)}

	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn(ctx, "using in-memory storage; data is lost on exit")
		rt.Backend = MemoryBackend(memory.NewStore())
	default:
		poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
		if cfg.DBMaxConns > 0 {
			poolCfg.MaxConns = int32(cfg.DBMaxConns)
		}
		pool, err := postgres.NewPool(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		rt.pool = pool
		rt.Checks["database"] = pool

		if err := postgres.Migrate(ctx, postgres.NewTxManager(pool)); err != nil {
			rt.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		rt.Backend, err = PostgresBackend(pool, clock.Location())
		if err != nil {
			rt.Close()
			return nil, err
		}
	}

	opts := Options{
		Clock: clock,
		JWT:   auth.DefaultJWTConfig(cfg.JWTSecret),
	}
	if cfg.AccessTokenTTL > 0 {
		opts.JWT.AccessTokenTTL = cfg.AccessTokenTTL
	}

	if cfg.RedisAddr != "" {
		rt.cache = cache.NewDashboardCache(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.DashboardTTL,
		})
		if err := rt.cache.Ping(ctx); err != nil {
			logger.Warn(ctx, "redis is unreachable; dashboard cache reads will fall through", "addr", cfg.RedisAddr, "error", err)
		}
		rt.Checks["cache"] = rt.cache
		opts.Dashboard = rt.cache
	}

	if cfg.MediaDir != "" {
		rt.Media, err = filestore.NewLocal(cfg.MediaDir, cfg.MediaBaseURL)
		if err != nil {
			rt.Close()
			return nil, err
		}
		opts.Media = rt.Media
	}

	rt.Services = NewServices(rt.Backend, opts)
	return rt, nil
}

// PurgePublished drops relayed outbox messages older than retention when the
// backend keeps them.
func (rt *Runtime) PurgePublished(ctx context.Context, retention time.Duration) (int64, error) {
	q, ok := rt.Backend.Queue.(interface {
		PurgePublished(ctx context.Context, before time.Time) (int64, error)
	})
	if !ok {
		return 0, nil
	}
	return q.PurgePublished(ctx, rt.Services.Clock.Now().Add(-retention))
}

// Close releases the pool and the cache connection.
func (rt *Runtime) Close() {
	if rt.cache != nil {
		if err := rt.cache.Close(); err != nil {
			logger.Warn(context.Background(), "close redis", "error", err)
		}
	}
	if rt.pool != nil {
		rt.pool.Close()
	}
}
