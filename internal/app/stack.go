package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/stockroom/internal/inventory"
	"github.com/odyssey-erp/stockroom/internal/platform/cache"
	"github.com/odyssey-erp/stockroom/internal/platform/db"
)

// InventoryStack is the wired inventory engine shared by the server, the
// worker and the seed script.
type InventoryStack struct {
	Repository inventory.Repository
	Service    *inventory.Service
	Presenter  *inventory.Presenter
	Checks     map[string]HealthCheck

	pool  *pgxpool.Pool
	redis *redis.Client
}

// NewInventoryStack connects the configured store and optional Redis cache.
// observer may be nil.
func NewInventoryStack(ctx context.Context, cfg *Config, logger *slog.Logger, observer inventory.MutationObserver) (*InventoryStack, error) {
	stack := &InventoryStack{Checks: map[string]HealthCheck{}}

	var repo inventory.Repository
	switch cfg.StoreDriver {
	case StoreDriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		repo = inventory.NewMemoryRepository()
	default:
		pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
		if err != nil {
			return nil, err
		}
		stack.pool = pool
		stack.Checks["postgres"] = pool.Ping
		pgRepo := inventory.NewPostgresRepository(pool)
		if cfg.PGAutoMigrate {
			if err := pgRepo.Migrate(ctx); err != nil {
				stack.Close()
				return nil, err
			}
			logger.Info("inventory schema up to date")
		}
		repo = pgRepo
	}

	if cfg.CacheEnabled {
		client, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			// The cache is optional; reads go straight to the store.
			logger.Warn("redis unavailable, cache disabled", slog.Any("error", err))
		} else {
			stack.redis = client
			stack.Checks["redis"] = func(ctx context.Context) error { return cache.Ping(ctx, client) }
			repo = inventory.NewCachedRepository(repo, inventory.NewCache(client, cfg.CacheTTL), logger)
		}
	}

	thresholds := inventory.NewThresholds(cfg.ReorderThreshold, cfg.ReorderThresholds)
	stack.Repository = repo
	stack.Service = inventory.NewService(repo, logger, observer)
	stack.Presenter = inventory.NewPresenter(repo, thresholds)
	return stack, nil
}

// Close releases the pool and Redis client.
func (s *InventoryStack) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
	return errors.Join(errs...)
}
