package localstore

import (
	"context"
	"fmt"
	"time"

	"github.com/secosha/marketplace/pkg/redis"
)

type redisKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	LocalKey(key string) string
}

// Redis keeps client state in a shared redis instance under the local key namespace.
type Redis struct {
	client redisKV
}

// NewRedis wraps a pkg/redis client.
func NewRedis(client redisKV) (*Redis, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.client.LocalKey(key))
	if redis.IsNil(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return []byte(value), nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.client.LocalKey(key), string(value), 0); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.client.LocalKey(key)); err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}
