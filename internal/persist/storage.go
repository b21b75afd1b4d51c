// Package persist saves the long-lived part of the application state to a
// key-value storage and restores it on start.
package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Storage.Get for a missing key.
var ErrNotFound = errors.New("persist: key not found")

// Storage is a persisted key-value storage.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// RedisStorage keeps values in Redis without expiry.
type RedisStorage struct {
	rdb *redis.Client
}

func NewRedisStorage(rdb *redis.Client) *RedisStorage {
	return &RedisStorage{rdb: rdb}
}

func (s *RedisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return raw, nil
}

func (s *RedisStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStorage) Remove(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}
