// Package redis opens the optional redis connection used for sessions and
// the post cache.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Config holds redis connection settings.
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a redis host is configured.
func (c Config) Enabled() bool {
	return c.Host != ""
}

// Addr returns host:port, defaulting the port to 6379.
func (c Config) Addr() string {
	port := c.Port
	if port == "" {
		port = "6379"
	}
	return net.JoinHostPort(c.Host, port)
}

// LoadConfigFromEnv reads the REDIS_* variables. An unparsable REDIS_DB
// falls back to 0.
func LoadConfigFromEnv() Config {
	db, err := strconv.Atoi(os.Getenv("REDIS_DB"))
	if err != nil {
		db = 0
	}
	return Config{
		Host:     os.Getenv("REDIS_HOST"),
		Port:     os.Getenv("REDIS_PORT"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	}
}

// NewRedisClient connects and pings redis. It returns a nil client and nil
// error when redis is not configured.
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	addr := cfg.Addr()
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", addr, "error", err)
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}

	slog.Info("Redis connection successful", "address", addr)
	return rdb, nil
}
