package sessionstore

import (
	"context"
	"errors"
	"fmt"

	"thread_broadcast_bot/internal/domain/session"
	"thread_broadcast_bot/internal/infra/database"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "thread_broadcast_bot:session:"

// RedisStore keeps the session blob under a single key without expiry.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore dials Redis and waits for it to answer PING.
func NewRedisStore(ctx context.Context, addr string, db int, key string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := backoff.Retry(func() error {
		return client.Ping(ctx).Err()
	}, database.ConnectBackOff(ctx)); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &RedisStore{client: client, key: redisKeyPrefix + key}, nil
}

func (s *RedisStore) Load(ctx context.Context) ([]byte, error) {
	blob, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return blob, nil
}

func (s *RedisStore) Save(ctx context.Context, blob []byte) error {
	if err := s.client.Set(ctx, s.key, blob, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
