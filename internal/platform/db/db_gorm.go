// Package db opens the gorm connection (PostgreSQL or SQLite) and translates
// driver-level errors the adapters care about.
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	retryInterval = 3 * time.Second

	// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
	uniqueViolation = "23505"
)

// Config holds database connection settings.
type Config struct {
	Driver       string
	User         string
	Password     string
	Name         string
	Host         string
	Port         string
	SSLMode      string
	InstanceName string // Cloud SQL instance; connects over /cloudsql/<instance>
	URL          string // full DSN, overrides every other field
	SQLitePath   string
	Migrate      bool
}

// LoadConfigFromEnv reads the DB_* variables.
func LoadConfigFromEnv() Config {
	driver := strings.ToLower(os.Getenv("DB_DRIVER"))
	if driver == "" {
		driver = DriverPostgres
	}
	sqlitePath := os.Getenv("SQLITE_PATH")
	if sqlitePath == "" {
		sqlitePath = "blog.db"
	}
	return Config{
		Driver:       driver,
		User:         os.Getenv("DB_USER"),
		Password:     os.Getenv("DB_PASSWORD"),
		Name:         os.Getenv("DB_NAME"),
		Host:         os.Getenv("DB_HOST"),
		Port:         os.Getenv("DB_PORT"),
		SSLMode:      os.Getenv("DB_SSLMODE"),
		InstanceName: os.Getenv("INSTANCE_CONNECTION_NAME"),
		URL:          os.Getenv("DATABASE_URL"),
		SQLitePath:   sqlitePath,
		Migrate:      os.Getenv("RUN_MIGRATIONS") == "true",
	}
}

// BuildDSN returns the connection string for cfg. For PostgreSQL a Cloud SQL
// instance takes precedence over Host/Port, and URL overrides everything.
func BuildDSN(cfg Config) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	if cfg.Driver == DriverSQLite {
		if strings.Contains(cfg.SQLitePath, "?") {
			return cfg.SQLitePath
		}
		return cfg.SQLitePath + "?_foreign_keys=on"
	}

	host, port, sslmode := cfg.Host, cfg.Port, cfg.SSLMode
	if cfg.InstanceName != "" {
		host = "/cloudsql/" + cfg.InstanceName
		port = ""
		sslmode = "disable"
	}
	if host == "" {
		host = "localhost"
	}
	if sslmode == "" {
		sslmode = "disable"
	}

	parts := []string{
		"host=" + host,
		"user=" + cfg.User,
		"password=" + cfg.Password,
		"dbname=" + cfg.Name,
	}
	if port != "" {
		parts = append(parts, "port="+port)
	}
	parts = append(parts, "sslmode="+sslmode)
	return strings.Join(parts, " ")
}

// Opener opens a gorm connection for a DSN.
type Opener func(dsn string) (*gorm.DB, error)

// NewOpener returns the Opener for driver.
func NewOpener(driver string) (Opener, error) {
	gcfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
	switch driver {
	case DriverPostgres:
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), gcfg)
		}, nil
	case DriverSQLite:
		return func(dsn string) (*gorm.DB, error) {
			db, err := gorm.Open(sqlite.Open(dsn), gcfg)
			if err != nil {
				return nil, err
			}
			// ON DELETE CASCADE needs foreign keys enabled per connection.
			if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
				return nil, err
			}
			return db, nil
		}, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

// ConnectWithRetry calls opener until it succeeds or timeout elapses, sleeping
// retryInterval between attempts.
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
}

// Open connects using cfg, retrying for up to timeout. SQLite connections are
// limited to one so an in-process database sees a single consistent schema.
func Open(cfg Config, timeout time.Duration) (*gorm.DB, error) {
	opener, err := NewOpener(cfg.Driver)
	if err != nil {
		return nil, err
	}
	db, err := ConnectWithRetry(BuildDSN(cfg), timeout, opener)
	if err != nil {
		return nil, err
	}
	if cfg.Driver == DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	slog.Info("DB connection successful", "driver", cfg.Driver)
	return db, nil
}

// Migrate creates or updates the tables for models.
func Migrate(db *gorm.DB, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err was caused by a unique constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return true
	}
	// SQLite without error translation.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Pinger checks database reachability; it backs the health endpoint.
type Pinger struct {
	db *gorm.DB
}

// NewPinger creates a Pinger for db.
func NewPinger(db *gorm.DB) *Pinger {
	return &Pinger{db: db}
}

// Ping verifies the connection is alive.
func (p *Pinger) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
