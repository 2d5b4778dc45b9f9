package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisKV persists application state in Redis. Values never expire.
type RedisKV struct {
	client *redis.Client
}

// NewRedisKV creates a Redis-backed key-value store
func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{
		client: client,
	}
}

func (c *RedisKV) key(key string) string {
	return fmt.Sprintf("kv:%s", key)
}

func (c *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	return c.client.Set(ctx, c.key(key), value, 0).Err()
}
