package cache

import (
	"fmt"
	"time"

	"github.com/coupang-catalog/backend/internal/domain/view"
	"github.com/coupang-catalog/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// SessionStoreFactory creates session stores based on configuration
type SessionStoreFactory struct {
	cfg                   config.SessionConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// SessionStoreFactoryOption is a functional option for configuring the factory
type SessionStoreFactoryOption func(*SessionStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) SessionStoreFactoryOption {
	return func(f *SessionStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory store. Default is true.
func WithInMemoryFallback(allow bool) SessionStoreFactoryOption {
	return func(f *SessionStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewSessionStoreFactory creates a new factory
func NewSessionStoreFactory(cfg config.SessionConfig, opts ...SessionStoreFactoryOption) *SessionStoreFactory {
	f := &SessionStoreFactory{
		cfg:                   cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns the configured store. With the redis backend it falls
// back to memory when Redis cannot be reached and fallback is allowed.
func (f *SessionStoreFactory) CreateStore() (view.SessionStore, error) {
	if f.cfg.Backend != config.SessionBackendRedis {
		f.logger.Info("using in-memory session store", zap.Duration("ttl", f.ttl()))
		return NewInMemorySessionStore(f.ttl()), nil
	}

	store, err := NewRedisSessionStore(RedisConfig{
		Host:     f.cfg.Redis.Host,
		Port:     f.cfg.Redis.Port,
		Password: f.cfg.Redis.Password,
		DB:       f.cfg.Redis.DB,
	}, f.ttl())
	if err == nil {
		f.logger.Info("using Redis session store", zap.String("addr", f.cfg.Redis.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis session store unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory session store. "+
		"Sessions will not be shared between instances.",
		zap.Error(err),
	)
	return NewInMemorySessionStore(f.ttl()), nil
}

func (f *SessionStoreFactory) ttl() time.Duration {
	if f.cfg.TTL <= 0 {
		return DefaultSessionTTL
	}
	return f.cfg.TTL
}
