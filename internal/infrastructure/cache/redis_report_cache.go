package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/comanda/backend/internal/application/report"
	"github.com/redis/go-redis/v9"
)

const (
	defaultReportKeyPrefix = "comanda:report:daily:"
	clearScanCount         = 100
)

// RedisReportCache implements report.Cache on Redis.
// Reports are stored as JSON under one key per day.
type RedisReportCache struct {
	client    redis.UniversalClient
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisReportCache connects to Redis and verifies the connection
func NewRedisReportCache(ctx context.Context, cfg RedisConfig) (*RedisReportCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisReportCacheWithClient(client, ""), nil
}

// NewRedisReportCacheWithClient creates a cache on an existing client
func NewRedisReportCacheWithClient(client redis.UniversalClient, keyPrefix string) *RedisReportCache {
	if keyPrefix == "" {
		keyPrefix = defaultReportKeyPrefix
	}
	return &RedisReportCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached report or report.ErrCacheMiss
func (c *RedisReportCache) Get(ctx context.Context, date string) (*report.DailyReport, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+date).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, report.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read daily report %s: %w", date, err)
	}

	var daily report.DailyReport
	if err := json.Unmarshal(data, &daily); err != nil {
		return nil, fmt.Errorf("failed to decode daily report %s: %w", date, err)
	}
	return &daily, nil
}

// Set stores the report for ttl
func (c *RedisReportCache) Set(ctx context.Context, daily *report.DailyReport, ttl time.Duration) error {
	data, err := json.Marshal(daily)
	if err != nil {
		return fmt.Errorf("failed to encode daily report: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+daily.Date, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write daily report %s: %w", daily.Date, err)
	}
	return nil
}

// Delete removes the report of one date
func (c *RedisReportCache) Delete(ctx context.Context, date string) error {
	if err := c.client.Del(ctx, c.keyPrefix+date).Err(); err != nil {
		return fmt.Errorf("failed to delete daily report %s: %w", date, err)
	}
	return nil
}

// Clear removes every report under the key prefix.
// Keys are found with SCAN so large databases are not blocked.
func (c *RedisReportCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.keyPrefix+"*", clearScanCount).Iterator()
	keys := make([]string, 0, clearScanCount)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == clearScanCount {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to clear daily reports: %w", err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan daily reports: %w", err)
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to clear daily reports: %w", err)
		}
	}
	return nil
}

// Ping checks the Redis connection
func (c *RedisReportCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (c *RedisReportCache) Close() error {
	return c.client.Close()
}

// Ensure RedisReportCache implements report.Cache
var _ report.Cache = (*RedisReportCache)(nil)
