package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "courtside"
	generationKey = "gen"
)

// RedisCache stores JSON-encoded aggregates under a generation counter.
// Bumping the counter orphans every older key; TTLs reap them.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a new Redis cache connection
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return NewRedisCacheFromClient(client, defaultPrefix), nil
}

// NewRedisCacheFromClient wraps an existing client. prefix namespaces every
// key this cache touches.
func NewRedisCacheFromClient(client *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RedisCache{client: client, prefix: prefix}
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Client returns the underlying Redis client
func (rc *RedisCache) Client() *redis.Client {
	return rc.client
}

// HealthCheck pings Redis to verify connection
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// Generation returns the namespace reads and writes should use. Callers
// read it once, before computing a value, and store under the same number so
// a write that lands in between orphans the result.
func (rc *RedisCache) Generation(ctx context.Context) (int64, error) {
	gen, err := rc.client.Get(ctx, rc.prefix+":"+generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading cache generation: %w", err)
	}
	return gen, nil
}

// Get decodes the entry stored under key in generation gen into dest. It
// reports false on a miss.
func (rc *RedisCache) Get(ctx context.Context, gen int64, key string, dest interface{}) (bool, error) {
	raw, err := rc.client.Get(ctx, rc.key(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// Set stores value as JSON with TTL under generation gen
func (rc *RedisCache) Set(ctx context.Context, gen int64, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return rc.client.Set(ctx, rc.key(gen, key), raw, ttl).Err()
}

// Invalidate advances the generation so every existing entry is skipped.
func (rc *RedisCache) Invalidate(ctx context.Context) error {
	return rc.client.Incr(ctx, rc.prefix+":"+generationKey).Err()
}

func (rc *RedisCache) key(gen int64, key string) string {
	return fmt.Sprintf("%s:%d:%s", rc.prefix, gen, key)
}
