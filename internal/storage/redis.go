package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces rejection records inside a shared Redis instance.
const keyPrefix = "draftguard:rejection:"

// RedisStore is the volatile fast tier. Entries carry a TTL matching the
// configured retention window, so Redis evicts stale records on its own;
// logical expiry is still enforced at read time by the caller.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing Redis client. ttl <= 0 stores without expiry.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, data []byte) error {
	return s.client.Set(ctx, keyPrefix+key, data, s.ttl).Err()
}

func (s *RedisStore) Name() string { return "redis" }
