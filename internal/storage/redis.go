package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSnapshotter keeps the document under a single key without expiry.
type RedisSnapshotter struct {
	client *redis.Client
	key    string
}

// NewRedisSnapshotter connects and pings before returning.
func NewRedisSnapshotter(ctx context.Context, redisURL, key string) (*RedisSnapshotter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisSnapshotter{client: client, key: key}, nil
}

func (s *RedisSnapshotter) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return data, nil
}

func (s *RedisSnapshotter) Save(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *RedisSnapshotter) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisSnapshotter) Close() error {
	return s.client.Close()
}

func (s *RedisSnapshotter) Describe() string { return "redis:" + s.key }
