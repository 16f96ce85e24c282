package cache

import (
	"context"
	"testing"
	"time"

	"github.com/comanda/backend/internal/application/report"
	"github.com/comanda/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// unreachableClient points at a port nothing listens on
func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestRedisReportCache_KeyPrefix(t *testing.T) {
	client := unreachableClient()
	defer client.Close()

	assert.Equal(t, defaultReportKeyPrefix, NewRedisReportCacheWithClient(client, "").keyPrefix)
	assert.Equal(t, "test:", NewRedisReportCacheWithClient(client, "test:").keyPrefix)
}

func TestRedisReportCache_ErrorsAreNotMisses(t *testing.T) {
	client := unreachableClient()
	defer client.Close()
	c := NewRedisReportCacheWithClient(client, "")
	ctx := context.Background()

	_, err := c.Get(ctx, "2026-03-09")
	require.Error(t, err)
	assert.NotErrorIs(t, err, report.ErrCacheMiss)
	assert.Contains(t, err.Error(), "2026-03-09")

	assert.Error(t, c.Set(ctx, sampleDailyReport("2026-03-09"), time.Hour))
	assert.Error(t, c.Delete(ctx, "2026-03-09"))
	assert.Error(t, c.Clear(ctx))
	assert.Error(t, c.Ping(ctx))
}

func TestReportCacheFactory_Create(t *testing.T) {
	t.Run("redis disabled uses memory", func(t *testing.T) {
		f := NewReportCacheFactory(config.RedisConfig{Enabled: false})

		c, closeFn, err := f.Create(context.Background())

		require.NoError(t, err)
		assert.IsType(t, &InMemoryReportCache{}, c)
		assert.NoError(t, closeFn())
	})

	t.Run("unreachable redis falls back with a warning", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		f := NewReportCacheFactory(
			config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1},
			WithLogger(zap.New(core)),
		)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		c, _, err := f.Create(ctx)

		require.NoError(t, err)
		assert.IsType(t, &InMemoryReportCache{}, c)
		assert.Equal(t, 1, logs.Len())
	})

	t.Run("unreachable redis without fallback fails", func(t *testing.T) {
		f := NewReportCacheFactory(
			config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1},
			WithInMemoryFallback(false),
		)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_, _, err := f.Create(ctx)

		assert.Error(t, err)
	})
}
