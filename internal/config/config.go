// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultDBPath          = "./data/debtsolver.db"
	defaultMaxGroupSize    = 2
	defaultTokenTTL        = 24 * time.Hour
	defaultIdempotencyTTL  = 24 * time.Hour
	defaultShutdownTimeout = 10 * time.Second
)

// Config captures server runtime configuration loaded from environment
// variables.
type Config struct {
	// Port is the listen port; Address() turns it into a dial string.
	Port string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// DBPath locates the SQLite journal. Ignored when DatabaseURL is set.
	DBPath string
	// DatabaseURL selects the PostgreSQL journal when non-empty.
	DatabaseURL string
	// RedisURL enables the idempotency reservation cache when non-empty.
	RedisURL string
	// AuthSecret enables bearer-token authentication when non-empty.
	AuthSecret string
	// TokenTTL bounds the lifetime of minted tokens.
	TokenTTL time.Duration
	// IdempotencyTTL bounds how long client transaction ids reserve their
	// fast-path cache entries.
	IdempotencyTTL time.Duration
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
	// MaxGroupSize is the default settlement group size when requests do
	// not choose one. Minimum 2.
	MaxGroupSize int
}

// Load reads configuration values from the environment, applying defaults
// for everything optional.
func Load() (Config, error) {
	cfg := Config{
		Port:         getEnv("PORT", defaultPort),
		LogLevel:     strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DBPath:       getEnv("DB_PATH", defaultDBPath),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisURL:     os.Getenv("REDIS_URL"),
		AuthSecret:   os.Getenv("AUTH_SECRET"),
		MaxGroupSize: defaultMaxGroupSize,
	}

	var err error
	if cfg.TokenTTL, err = durationEnv("TOKEN_TTL", defaultTokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", defaultIdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", defaultShutdownTimeout); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("MAX_GROUP_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid MAX_GROUP_SIZE: %w", err)
		}
		if size < 2 {
			return Config{}, fmt.Errorf("invalid MAX_GROUP_SIZE: must be at least 2, got %d", size)
		}
		cfg.MaxGroupSize = size
	}

	return cfg, nil
}

// Address returns the listen address for net/http.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
