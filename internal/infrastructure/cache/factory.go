package cache

import (
	"context"
	"fmt"

	appcashier "github.com/hotelops/backend/internal/application/cashier"
	"github.com/hotelops/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ReportCacheFactory creates report caches based on configuration
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

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
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

// Cache is a ReportCache with a lifecycle and a health check
type Cache interface {
	appcashier.ReportCache
	Ping(ctx context.Context) error
	Close() error
}

// CreateCache returns a Redis cache when Redis is enabled and reachable,
// otherwise the in-memory cache (if fallback is allowed).
func (f *ReportCacheFactory) CreateCache() (Cache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory report cache")
		return inMemoryCache{NewInMemoryReportCache()}, nil
	}

	store, err := NewRedisReportCache(RedisConfig{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("Using Redis report cache", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for report cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory report cache. "+
		"Reports may be stale on other instances until the cache TTL expires.",
		zap.Error(err),
	)
	return inMemoryCache{NewInMemoryReportCache()}, nil
}

// inMemoryCache adapts InMemoryReportCache to Cache
type inMemoryCache struct {
	*InMemoryReportCache
}

func (inMemoryCache) Ping(context.Context) error { return nil }
func (inMemoryCache) Close() error               { return nil }
