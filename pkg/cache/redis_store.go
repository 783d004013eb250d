package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// scanBatch is the COUNT hint per SCAN page.
const scanBatch = 500

// RedisStore is the shared remote layer.
type RedisStore struct {
	client redis.Cmdable
}

var _ RemoteStore = (*RedisStore)(nil)

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisStoreFromURL parses a redis:// URL and pings the server.
func NewRedisStoreFromURL(ctx context.Context, url string) (*RedisStore, *redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(client), client, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (s *RedisStore) SetEX(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.SetEx(ctx, key, value, ttl).Err()
}

func (s *RedisStore) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([][]byte, len(vals))
	for i, v := range vals {
		switch val := v.(type) {
		case string:
			out[i] = []byte(val)
		case []byte:
			out[i] = val
		}
	}
	return out, nil
}

// Keys walks the keyspace with SCAN so a large instance is never blocked.
// SCAN may repeat keys across pages; the result is deduplicated.
func (s *RedisStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	seen := make(map[string]struct{})
	keys := make([]string, 0)

	iter := s.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}
