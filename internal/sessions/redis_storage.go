// Package sessions backs fiber sessions, which carry flash messages
// between a redirect and the page that follows it.
package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"wanderlust/internal/metrics"
)

const keyPrefix = "sess:"

// RedisStorage implements fiber.Storage on a go-redis client.
type RedisStorage struct {
	c       *redis.Client
	timeout time.Duration
}

func NewRedisStorage(c *redis.Client) *RedisStorage {
	return &RedisStorage{c: c, timeout: 3 * time.Second}
}

func (s *RedisStorage) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *RedisStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := s.ctx()
	defer cancel()
	v, err := s.c.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.ObserveSession("miss")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	metrics.ObserveSession("hit")
	return v, nil
}

func (s *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := s.ctx()
	defer cancel()
	metrics.ObserveSession("set")
	return s.c.Set(ctx, keyPrefix+key, val, exp).Err()
}

func (s *RedisStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := s.ctx()
	defer cancel()
	metrics.ObserveSession("del")
	return s.c.Del(ctx, keyPrefix+key).Err()
}

// Reset drops every session key, leaving other keys in the database alone.
func (s *RedisStorage) Reset() error {
	ctx, cancel := s.ctx()
	defer cancel()
	iter := s.c.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.c.Del(ctx, keys...).Err()
}

func (s *RedisStorage) Close() error { return s.c.Close() }
