// Package config loads the application settings from the environment,
// reading a .env file first when one exists.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// devSecretKey signs cookies when SECRET_KEY is unset outside release mode.
const devSecretKey = "dev-only-insecure-secret-key"

// ErrMissingSecret is returned in release mode without SECRET_KEY.
var ErrMissingSecret = errors.New("SECRET_KEY must be set in release mode")

// Config holds the application settings. Database and redis settings are
// loaded by their own packages.
type Config struct {
	Addr          string
	SecretKey     string
	CookieSecure  bool
	SessionCookie string
	GinMode       string
	LogLevel      slog.Level

	SessionTTL           time.Duration
	RememberTTL          time.Duration
	MaxSessionsPerUser   int
	SessionSweepInterval time.Duration

	LoginRatePerMinute int
	PostCacheTTL       time.Duration
}

// Load reads .env (if present) and the environment.
func Load() (Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment.
func FromEnv() (Config, error) {
	var errs []error
	cfg := Config{
		Addr:          getString("APP_ADDR", ":8080"),
		SecretKey:     os.Getenv("SECRET_KEY"),
		CookieSecure:  getBool("COOKIE_SECURE", false, &errs),
		SessionCookie: getString("SESSION_COOKIE_NAME", "sessionid"),
		GinMode:       getString("GIN_MODE", gin.DebugMode),
		LogLevel:      getLevel("LOG_LEVEL", &errs),

		SessionTTL:           getDuration("SESSION_TTL", 24*time.Hour, &errs),
		RememberTTL:          getDuration("REMEMBER_TTL", 30*24*time.Hour, &errs),
		MaxSessionsPerUser:   getInt("MAX_SESSIONS_PER_USER", 5, &errs),
		SessionSweepInterval: getDuration("SESSION_SWEEP_INTERVAL", time.Hour, &errs),

		LoginRatePerMinute: getInt("LOGIN_RATE_PER_MINUTE", 10, &errs),
		PostCacheTTL:       getDuration("POST_CACHE_TTL", 5*time.Minute, &errs),
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}

	if cfg.SecretKey == "" {
		if cfg.GinMode == gin.ReleaseMode {
			return Config{}, ErrMissingSecret
		}
		slog.Warn("SECRET_KEY is not set; using an insecure development key")
		cfg.SecretKey = devSecretKey
	}
	return cfg, nil
}

func getString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool, errs *[]error) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func getInt(key string, def int, errs *[]error) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		*errs = append(*errs, fmt.Errorf("%s: must be a positive integer, got %q", key, v))
		return def
	}
	return n
}

func getDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		*errs = append(*errs, fmt.Errorf("%s: must be a positive duration, got %q", key, v))
		return def
	}
	return d
}

func getLevel(key string, errs *[]error) slog.Level {
	var level slog.Level
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return slog.LevelInfo
	}
	if err := level.UnmarshalText([]byte(v)); err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return slog.LevelInfo
	}
	return level
}
