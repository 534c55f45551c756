package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores geocoding results keyed by query string.
type Cache interface {
	Get(ctx context.Context, query string) (Point, bool, error)
	Set(ctx context.Context, query string, p Point, ttl time.Duration) error
}

const cacheKeyPrefix = "copa:geocode:"

// CacheKey normalizes a query into a cache key.
func CacheKey(query string) string {
	return cacheKeyPrefix + strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// RedisCache keeps geocoding results in Redis so repeated runs do not hit
// the public endpoint again.
type RedisCache struct {
	client redis.UniversalClient
}

// NewRedisCache wraps a connected client.
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

// DialRedis connects to addr and verifies the connection.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// Get returns the cached point for query.
func (c *RedisCache) Get(ctx context.Context, query string) (Point, bool, error) {
	data, err := c.client.Get(ctx, CacheKey(query)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Point{}, false, nil
	}
	if err != nil {
		return Point{}, false, fmt.Errorf("redis get: %w", err)
	}
	var p Point
	if err := json.Unmarshal(data, &p); err != nil {
		return Point{}, false, fmt.Errorf("decode cached point: %w", err)
	}
	return p, true, nil
}

// Set stores p for query. A zero ttl keeps the entry forever.
func (c *RedisCache) Set(ctx context.Context, query string, p Point, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode point: %w", err)
	}
	if err := c.client.Set(ctx, CacheKey(query), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
