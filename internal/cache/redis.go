package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"todo-api/internal/config"
	"todo-api/internal/models"
	"todo-api/pkg/logger"
)

const guestCountKey = "todos:guest:count"

// Cache is a best-effort Redis cache over rendered todo lists and the guest
// todo count, keyed by ownership scope. Every method degrades to a no-op or
// a miss when Redis is unavailable; the cache never fails a request.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis. A connection failure is logged and yields a cache
// that misses everything, so the app keeps serving from Postgres.
func New(ctx context.Context, cfg *config.Config) *Cache {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error(ctx, "Invalid REDIS_URL", "error", err, "url", cfg.RedisURL)
		return &Cache{ttl: cfg.CacheTTL}
	}
	opts.PoolSize = cfg.RedisPoolSize
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn(ctx, "Redis unavailable; cache disabled", "error", err)
		return &Cache{ttl: cfg.CacheTTL}
	}
	logger.Info(ctx, "Redis client initialized", "pool_size", cfg.RedisPoolSize)
	return &Cache{client: client, ttl: cfg.CacheTTL}
}

func listKey(scope models.Scope) string {
	return "todos:" + scope.CacheKey()
}

// GetRawTodos reads the rendered todo list for the scope. Returns
// (nil, false) on miss or error.
func (c *Cache) GetRawTodos(ctx context.Context, scope models.Scope) ([]byte, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	b, err := c.client.Get(ctx, listKey(scope)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Debug(ctx, "Redis get todos failed", "error", err)
		return nil, false
	}
	return b, true
}

// SetRawTodosAsync writes the rendered todo list for the scope in the
// background with the configured TTL.
func (c *Cache) SetRawTodosAsync(scope models.Scope, b []byte) {
	if c == nil || c.client == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.client.Set(ctx, listKey(scope), b, c.ttl).Err(); err != nil {
			logger.Debug(ctx, "Redis set todos failed", "error", err)
		}
	}()
}

// GetGuestCount reads the cached guest todo count.
func (c *Cache) GetGuestCount(ctx context.Context) (int, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}
	v, err := c.client.Get(ctx, guestCountKey).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Debug(ctx, "Redis get guest count failed", "error", err)
		}
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SetGuestCount caches the guest todo count with the configured TTL.
func (c *Cache) SetGuestCount(ctx context.Context, count int) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, guestCountKey, strconv.Itoa(count), c.ttl).Err(); err != nil {
		logger.Debug(ctx, "Redis set guest count failed", "error", err)
	}
}

// Invalidate drops the cached list for the scope, plus the guest count when
// the scope is guest, so the next read goes to the database.
func (c *Cache) Invalidate(ctx context.Context, scope models.Scope) {
	if c == nil || c.client == nil {
		return
	}
	keys := []string{listKey(scope)}
	if !scope.Owned() {
		keys = append(keys, guestCountKey)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Debug(ctx, "Redis invalidate failed", "error", err)
	}
}

// Ready reports whether Redis answers a ping. Used by the readiness probe.
func (c *Cache) Ready(ctx context.Context) bool {
	if c == nil || c.client == nil {
		return false
	}
	return c.client.Ping(ctx).Err() == nil
}
