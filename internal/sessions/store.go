package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	CookieName = "wanderlust_session"
	lifetime   = 7 * 24 * time.Hour
)

// NewStore returns the session store. With an empty redisURL sessions live
// in process memory. The returned close func releases the backing storage.
func NewStore(redisURL string, secure bool) (*session.Store, func() error, error) {
	cfg := session.Config{
		Expiration:     lifetime,
		KeyLookup:      "cookie:" + CookieName,
		CookieHTTPOnly: true,
		CookieSecure:   secure,
		CookieSameSite: "Lax",
	}
	if redisURL == "" {
		log.Info().Str("backend", "memory").Msg("session storage")
		return session.New(cfg), func() error { return nil }, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	storage := NewRedisStorage(client)
	cfg.Storage = storage
	log.Info().Str("backend", "redis").Str("addr", opts.Addr).Msg("session storage")
	return session.New(cfg), storage.Close, nil
}

var _ fiber.Storage = (*RedisStorage)(nil)
