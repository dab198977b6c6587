package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coupang-catalog/backend/internal/domain/view"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultSessionKeyPrefix = "catalog:session:"

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisSessionStore stores sessions as JSON strings with a TTL
type RedisSessionStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisSessionStore connects to Redis and verifies the connection
func NewRedisSessionStore(cfg RedisConfig, ttl time.Duration) (*RedisSessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisSessionStoreWithClient(client, "", ttl), nil
}

// NewRedisSessionStoreWithClient creates a store with an existing client
func NewRedisSessionStoreWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisSessionStore {
	if keyPrefix == "" {
		keyPrefix = defaultSessionKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

// Save writes the session and resets its TTL
func (s *RedisSessionStore) Save(ctx context.Context, session view.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(session.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get reads a session
func (s *RedisSessionStore) Get(ctx context.Context, id uuid.UUID) (view.Session, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return view.Session{}, view.ErrSessionNotFound
		}
		return view.Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	var session view.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return view.Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return session, nil
}

// Delete removes a session
func (s *RedisSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return view.ErrSessionNotFound
	}
	return nil
}

// Close closes the Redis client
func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}

// GetClient returns the underlying Redis client
func (s *RedisSessionStore) GetClient() *redis.Client {
	return s.client
}

func (s *RedisSessionStore) key(id uuid.UUID) string {
	return s.keyPrefix + id.String()
}

var _ view.SessionStore = (*RedisSessionStore)(nil)
