package cache

import (
	"context"
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache stores JSON-encoded values under string keys.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// NoopCache is used when redis is disabled. Every Get misses.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string, interface{}) error { return ErrCacheMiss }

func (NoopCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }

func (NoopCache) Delete(context.Context, ...string) error { return nil }
