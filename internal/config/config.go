package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const devSessionSecret = "wanderlust-dev-secret"

type Config struct {
	Port          string
	StoreURI      string
	StoreName     string
	StoreTimeout  time.Duration
	SessionSecret string
	RedisURL      string
	AppEnv        string
	LogFile       string
	TemplatesDir  string
	StaticDir     string
	RateLimit     int
	Seed          bool
}

// UsesMongo reports whether StoreURI points at a MongoDB deployment
// rather than a sqlite file.
func (c Config) UsesMongo() bool {
	return strings.HasPrefix(c.StoreURI, "mongodb://") || strings.HasPrefix(c.StoreURI, "mongodb+srv://")
}

func Load() Config {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := Config{
		Port:          env("PORT", "8080"),
		StoreURI:      env("STORE_URI", "wanderlust.db"), // sqlite file in project root
		StoreName:     env("STORE_NAME", "wanderlust"),
		StoreTimeout:  envDuration("STORE_TIMEOUT", 10*time.Second),
		SessionSecret: env("SESSION_SECRET", devSessionSecret),
		RedisURL:      env("REDIS_URL", ""),
		AppEnv:        env("APP_ENV", "prod"),
		LogFile:       env("LOG_FILE", ""),
		TemplatesDir:  env("TEMPLATES_DIR", "./web/templates"),
		StaticDir:     env("STATIC_DIR", "./web/static"),
		RateLimit:     envInt("RATE_LIMIT_PER_MINUTE", 120),
		Seed:          envBool("SEED", true),
	}
	if cfg.SessionSecret == devSessionSecret {
		log.Warn().Msg("SESSION_SECRET is not set; using the development secret")
	}
	log.Info().
		Str("port", cfg.Port).
		Str("store_uri", maskURI(cfg.StoreURI)).
		Str("store_name", cfg.StoreName).
		Bool("redis_sessions", cfg.RedisURL != "").
		Str("app_env", cfg.AppEnv).
		Str("templates", cfg.TemplatesDir).
		Int("rate_limit", cfg.RateLimit).
		Bool("seed", cfg.Seed).
		Msg("config loaded")
	return cfg
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// maskURI hides credentials embedded in a connection string.
func maskURI(uri string) string {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return uri
	}
	at := strings.LastIndex(rest, "@")
	if at < 0 {
		return uri
	}
	return scheme + "://***@" + rest[at+1:]
}
