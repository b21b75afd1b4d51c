// Package cache provides Redis caching utilities for the reference backend.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"discovrr/internal/observability"
)

var client *redis.Client

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// NewClient builds a client from a redis:// URL or a bare host:port address.
func NewClient(addr string) (*redis.Client, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, err
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}
	c := redis.NewClient(opts)
	c.AddHook(metricsHook{})
	return c, nil
}

// InitRedis connects the package-level cache client. A failed connection
// leaves caching disabled rather than failing startup.
func InitRedis(addr string) {
	c, err := NewClient(addr)
	if err != nil {
		observability.GlobalLogger.Warn("invalid REDIS_URL, continuing without cache", "error", err)
		client = nil
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		observability.GlobalLogger.Warn("redis unavailable, continuing without cache", "error", err)
		client = nil
		return
	}
	observability.GlobalLogger.Info("redis connected")
	client = c
}

// SetClient installs c as the cache client. Passing nil disables caching.
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the current Redis client instance.
func GetClient() *redis.Client {
	return client
}

// Aside loads key into dest, calling load and storing its result on a miss.
// Without a client it just calls load.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, load func() error) error {
	if client == nil {
		return load()
	}
	if raw, err := client.Get(ctx, key).Bytes(); err == nil {
		if json.Unmarshal(raw, dest) == nil {
			return nil
		}
	}
	if err := load(); err != nil {
		return err
	}
	if raw, err := json.Marshal(dest); err == nil {
		client.Set(ctx, key, raw, ttl)
	}
	return nil
}
