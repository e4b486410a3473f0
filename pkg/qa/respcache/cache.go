package respcache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Client is the minimal cache surface the adapter needs. Both backends
// return (value, found, error); the engine treats any error as a miss.
type Client interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// RedisClient backs the response cache with Redis.
type RedisClient struct {
	rdb *redis.Client
}

func NewRedisClient(rdb *redis.Client) *RedisClient {
	return &RedisClient{rdb: rdb}
}

func (c *RedisClient) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisClient) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// MemoryClient keeps responses in process memory. Used in development and
// tests where no Redis is running.
type MemoryClient struct {
	store *gocache.Cache
}

func NewMemoryClient(defaultTTL time.Duration) *MemoryClient {
	return &MemoryClient{
		store: gocache.New(defaultTTL, 2*defaultTTL),
	}
}

func (c *MemoryClient) Get(_ context.Context, key string) (string, bool, error) {
	v, found := c.store.Get(key)
	if !found {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", false, nil
	}
	return s, true, nil
}

func (c *MemoryClient) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	c.store.Set(key, value, ttl)
	return nil
}
