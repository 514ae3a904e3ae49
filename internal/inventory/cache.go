package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache stores JSON payloads in Redis with a TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) get(ctx context.Context, key string, dest any) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(payload, dest)
}

func (c *Cache) set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

// CachedRepository serves List and Get from Redis. Keys embed the store's
// write revision, read from the store on every call, so an entry is only ever
// served to readers that observed the same store state. Any write by any
// process orphans older keys without touching Redis. GetBySKU always reads
// through so uniqueness checks see the store.
type CachedRepository struct {
	next   Repository
	cache  *Cache
	logger *slog.Logger
	group  singleflight.Group
}

// NewCachedRepository decorates next with cache.
func NewCachedRepository(next Repository, cache *Cache, logger *slog.Logger) *CachedRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedRepository{next: next, cache: cache, logger: logger}
}

func (r *CachedRepository) Get(ctx context.Context, id string) (Item, bool, error) {
	rev, err := r.next.Revision(ctx)
	if err != nil {
		return Item{}, false, err
	}
	key := fmt.Sprintf("inventory:item:%s:%d", id, rev)
	var item Item
	if hit, err := r.cache.get(ctx, key, &item); err != nil {
		r.logger.Warn("inventory cache read", slog.String("key", key), slog.Any("error", err))
	} else if hit {
		return item, true, nil
	}
	item, found, err := r.next.Get(ctx, id)
	if err != nil || !found {
		return item, found, err
	}
	if err := r.cache.set(ctx, key, item); err != nil {
		r.logger.Warn("inventory cache write", slog.String("key", key), slog.Any("error", err))
	}
	return item, true, nil
}

func (r *CachedRepository) GetBySKU(ctx context.Context, sku string) (Item, bool, error) {
	return r.next.GetBySKU(ctx, sku)
}

func (r *CachedRepository) List(ctx context.Context) ([]Item, error) {
	rev, err := r.next.Revision(ctx)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("inventory:items:%d", rev)
	var items []Item
	if hit, err := r.cache.get(ctx, key, &items); err != nil {
		r.logger.Warn("inventory cache read", slog.String("key", key), slog.Any("error", err))
	} else if hit {
		return items, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (any, error) {
		loaded, err := r.next.List(loadCtx)
		if err != nil {
			return nil, err
		}
		if err := r.cache.set(loadCtx, key, loaded); err != nil {
			r.logger.Warn("inventory cache write", slog.String("key", key), slog.Any("error", err))
		}
		return loaded, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		shared := res.Val.([]Item)
		out := make([]Item, len(shared))
		copy(out, shared)
		return out, nil
	}
}

func (r *CachedRepository) Insert(ctx context.Context, item Item) error {
	return r.next.Insert(ctx, item)
}

func (r *CachedRepository) CompareAndSwap(ctx context.Context, id string, expectedVersion int64, item Item) error {
	return r.next.CompareAndSwap(ctx, id, expectedVersion, item)
}

func (r *CachedRepository) Remove(ctx context.Context, id string) error {
	return r.next.Remove(ctx, id)
}

func (r *CachedRepository) Revision(ctx context.Context) (int64, error) {
	return r.next.Revision(ctx)
}
