// Package cache is a small key/value contract used to keep hot single-record
// lookups out of the database, with a Redis implementation.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aanand-mishra/registration-api/internal/config"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Cache stores opaque byte values with a time-to-live.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Redis implements Cache on a go-redis client. Every key is namespaced
// with the configured prefix, e.g. "registration:student:<uuid>".
type Redis struct {
	rdb    *redis.Client
	prefix string
}

type RedisOption func(*Redis)

func WithPrefix(prefix string) RedisOption {
	return func(c *Redis) { c.prefix = strings.Trim(prefix, ":") }
}

func NewRedis(rdb *redis.Client, opts ...RedisOption) *Redis {
	c := &Redis{rdb: rdb, prefix: "registration"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Redis) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

func (c *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache.Get %s: %w", key, err)
	}
	return val, nil
}

func (c *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("cache.Set %s: %w", key, err)
	}
	return nil
}

func (c *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, c.key(k))
	}

	if err := c.rdb.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("cache.Delete: %w", err)
	}
	return nil
}

// Connect builds a client from config and pings it, so a wrong address is
// reported at boot rather than on the first request.
func Connect(ctx context.Context, cfg config.Cache) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache.Connect %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}
