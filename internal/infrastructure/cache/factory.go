package cache

import (
	"context"
	"fmt"

	"github.com/comanda/backend/internal/application/report"
	"github.com/comanda/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ReportCacheFactory picks the report cache backend from configuration
type ReportCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ReportCacheFactoryOption is a functional option for configuring the factory
type ReportCacheFactoryOption func(*ReportCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ReportCacheFactoryOption {
	return func(f *ReportCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to the in-memory cache.
// Default is true.
func WithInMemoryFallback(allow bool) ReportCacheFactoryOption {
	return func(f *ReportCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewReportCacheFactory creates a new factory
func NewReportCacheFactory(cfg config.RedisConfig, opts ...ReportCacheFactoryOption) *ReportCacheFactory {
	f := &ReportCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns a Redis cache when Redis is enabled and reachable, otherwise the in-memory cache.
// The returned close function releases the backend.
func (f *ReportCacheFactory) Create(ctx context.Context) (report.Cache, func() error, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory report cache")
		return NewInMemoryReportCache(), func() error { return nil }, nil
	}

	redisCache, err := NewRedisReportCache(ctx, RedisConfig{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("using Redis report cache", zap.String("addr", f.redisConfig.Addr()))
		return redisCache, redisCache.Close, nil
	}

	if !f.allowInMemoryFallback {
		return nil, nil, fmt.Errorf("redis required for report cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory report cache", zap.Error(err))
	return NewInMemoryReportCache(), func() error { return nil }, nil
}
