// Command sweep deletes expired login sessions once and exits. It is meant
// for a scheduler when the server's own sweeper is not enough (for example
// when several instances share one database).
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"blog_backend/internal/app/config"
	"blog_backend/internal/app/di"
	authadapters "blog_backend/internal/feature/auth/adapters"
	authusecase "blog_backend/internal/feature/auth/usecase"
	"blog_backend/internal/platform/db"
	jwtmw "blog_backend/internal/platform/jwt"
	platformredis "blog_backend/internal/platform/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	gdb, err := db.Open(db.LoadConfigFromEnv(), 30*time.Second)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	rdb, err := platformredis.NewRedisClient(ctx, platformredis.LoadConfigFromEnv())
	if err != nil {
		slog.Warn("Redis unavailable. Sweeping database sessions.", "error", err)
		rdb = nil
	}

	users := authadapters.NewUserGorm(gdb)
	uc := authusecase.NewSessionUsecase(di.NewSessionRepository(rdb, gdb), users, jwtmw.NewGenerator(cfg.SecretKey), authusecase.SessionConfig{})

	n, err := uc.SweepExpired(ctx)
	if rdb != nil {
		_ = rdb.Close()
	}
	if err != nil {
		slog.Error("session sweep failed", "error", err)
		os.Exit(1)
	}
	slog.Info("sweep ok", "deleted", n)
}
