package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Backend is the cache backend chosen at startup
type Backend struct {
	// Client is nil when the in-memory fallback is in use
	Client *redis.Client
	Cache  TTLCache
}

// IsRedis reports whether Redis backs the cache
func (b *Backend) IsRedis() bool {
	return b.Client != nil
}

// Close releases the backend's resources
func (b *Backend) Close() error {
	if b.Client != nil {
		return b.Client.Close()
	}
	if mc, ok := b.Cache.(*MemoryCache); ok {
		return mc.Close()
	}
	return nil
}

// Factory creates the cache backend based on configuration
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	sweepInterval         time.Duration
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to memory.
// Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		sweepInterval:         time.Minute,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create connects to Redis when a host is configured and otherwise, or on
// failure when fallback is allowed, returns an in-memory backend.
func (f *Factory) Create(ctx context.Context) (*Backend, error) {
	if f.redisConfig.Host == "" {
		f.logger.Info("Redis not configured, using in-memory cache")
		return f.memoryBackend(), nil
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis cache", zap.String("addr", f.redisConfig.Addr()))
		return &Backend{Client: client, Cache: NewRedisCache(client, "shop:")}, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory cache. "+
		"Carts and sessions will not be shared across instances.",
		zap.Error(err),
	)
	return f.memoryBackend(), nil
}

func (f *Factory) memoryBackend() *Backend {
	return &Backend{Cache: NewMemoryCache(f.sweepInterval)}
}
