package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/illmade-knight/go-syncloader/pkg/source"
)

// RedisConfig holds the connection and key settings for a RedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Key is the single Redis key this store reads and writes.
	Key string
	// TTL bounds how long a written value survives; zero means no expiry.
	TTL time.Duration
}

// RedisStore is a local-capability backend persisting one JSON-encoded value
// under a fixed Redis key. It has no remote side; compose it with a remote
// source via NewComposite.
type RedisStore[T any] struct {
	source.LocalOnly[T]

	client *redis.Client
	cfg    RedisConfig
	empty  T
	logger zerolog.Logger
}

// NewRedisStore creates and connects a RedisStore. It pings the Redis server
// to ensure connectivity before returning.
func NewRedisStore[T any](ctx context.Context, cfg RedisConfig, empty T, logger zerolog.Logger) (*RedisStore[T], error) {
	if cfg.Key == "" {
		return nil, fmt.Errorf("redis key cannot be empty")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info().Str("redis_address", cfg.Addr).Str("key", cfg.Key).Msg("Successfully connected to Redis.")

	return &RedisStore[T]{
		client: rdb,
		cfg:    cfg,
		empty:  empty,
		logger: logger.With().Str("component", "RedisStore").Logger(),
	}, nil
}

// EmptyValue returns the configured empty value.
func (s *RedisStore[T]) EmptyValue() T {
	return s.empty
}

// ReadLocal fetches and decodes the stored value. A missing key is reported
// as ErrNoLocalData, not a failure.
func (s *RedisStore[T]) ReadLocal(ctx context.Context) (T, error) {
	data, err := s.client.Get(ctx, s.cfg.Key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return s.empty, source.ErrNoLocalData
		}
		s.logger.Error().Err(err).Str("key", s.cfg.Key).Msg("Unexpected Redis error during read.")
		return s.empty, fmt.Errorf("redis get for %s: %w", s.cfg.Key, err)
	}

	var value T
	if err := json.Unmarshal([]byte(data), &value); err != nil {
		s.logger.Error().Err(err).Str("key", s.cfg.Key).Msg("Failed to unmarshal cached data.")
		return s.empty, fmt.Errorf("failed to unmarshal data: %w", err)
	}
	return value, nil
}

// WriteLocal encodes the value and stores it under the configured key with
// the configured TTL.
func (s *RedisStore[T]) WriteLocal(ctx context.Context, value T) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		s.logger.Error().Err(err).Str("key", s.cfg.Key).Msg("Failed to marshal data for caching.")
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	if err := s.client.Set(ctx, s.cfg.Key, jsonData, s.cfg.TTL).Err(); err != nil {
		s.logger.Error().Err(err).Str("key", s.cfg.Key).Msg("Failed to set data in Redis.")
		return fmt.Errorf("failed to set in redis: %w", err)
	}
	return nil
}

// DeleteLocal removes the key. Deleting an absent key is not an error.
func (s *RedisStore[T]) DeleteLocal(ctx context.Context) error {
	if err := s.client.Del(ctx, s.cfg.Key).Err(); err != nil {
		s.logger.Error().Err(err).Str("key", s.cfg.Key).Msg("Failed to delete key from Redis.")
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// Close closes the Redis client connection.
func (s *RedisStore[T]) Close() error {
	if s.client != nil {
		s.logger.Info().Msg("Closing Redis client connection...")
		return s.client.Close()
	}
	return nil
}
