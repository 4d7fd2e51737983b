// Package redis adapts Redis to the cache and event bus ports.
package redis

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	goredis "github.com/redis/go-redis/v9"
)

const service = "redis"

// Cache implements ports.Cache with plain string keys under a prefix.
type Cache struct {
	client goredis.UniversalClient
	prefix string
}

var _ ports.Cache = (*Cache)(nil)

func NewCache(client goredis.UniversalClient, prefix string) *Cache {
	return &Cache{client: client, prefix: prefix}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ports.ErrCacheMiss
	}
	if err != nil {
		return nil, errs.NewExternalServiceError(service, err)
	}
	return value, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return errs.NewExternalServiceError(service, err)
	}
	return nil
}

func (c *Cache) Invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return errs.NewExternalServiceError(service, err)
	}
	return nil
}
