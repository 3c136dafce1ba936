package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"blog_backend/internal/app/config"
	"blog_backend/internal/app/di"
	"blog_backend/internal/app/router"
	authadapters "blog_backend/internal/feature/auth/adapters"
	authentity "blog_backend/internal/feature/auth/domain/entity"
	authhandler "blog_backend/internal/feature/auth/transport/handler"
	authmw "blog_backend/internal/feature/auth/transport/middleware"
	authusecase "blog_backend/internal/feature/auth/usecase"
	postadapters "blog_backend/internal/feature/post/adapters"
	posthandler "blog_backend/internal/feature/post/transport/handler"
	postusecase "blog_backend/internal/feature/post/usecase"
	"blog_backend/internal/platform/csrf"
	"blog_backend/internal/platform/db"
	jwtmw "blog_backend/internal/platform/jwt"
	platformredis "blog_backend/internal/platform/redis"
	"blog_backend/internal/platform/web"
	"blog_backend/internal/shared/ratelimiter"
)

const (
	dbConnectTimeout = 60 * time.Second
	shutdownTimeout  = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB
	dbCfg := db.LoadConfigFromEnv()
	gdb, err := db.Open(dbCfg, dbConnectTimeout)
	if err != nil {
		return err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer func() {
			if err := sqlDB.Close(); err != nil {
				slog.Error("failed to close database", "error", err)
			}
		}()
	}
	if dbCfg.Migrate {
		if err := db.Migrate(gdb, &authentity.User{}, &authadapters.SessionModel{}, &postadapters.PostModel{}); err != nil {
			return err
		}
		slog.Info("database migrated")
	}

	// Redis is optional: sessions fall back to the database and the post
	// cache is bypassed.
	rdb, err := platformredis.NewRedisClient(ctx, platformredis.LoadConfigFromEnv())
	if err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
		rdb = nil
	}
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// Repository
	userRepo := authadapters.NewUserGorm(gdb)
	sessionRepo := di.NewSessionRepository(rdb, gdb)
	postRepo := di.NewPostRepository(rdb, gdb, cfg.PostCacheTTL)

	// Usecase
	authUC := authusecase.NewAuthUsecase(userRepo)
	sessionUC := authusecase.NewSessionUsecase(sessionRepo, userRepo, jwtmw.NewGenerator(cfg.SecretKey), authusecase.SessionConfig{
		TTL:         cfg.SessionTTL,
		RememberTTL: cfg.RememberTTL,
		MaxPerUser:  cfg.MaxSessionsPerUser,
	})
	postUC := postusecase.NewPostUsecase(postRepo)

	// Handler
	cookie := authmw.SessionCookie{Name: cfg.SessionCookie, Secure: cfg.CookieSecure}
	authH := authhandler.NewAuthHandler(authUC, sessionUC, cookie)
	postH := posthandler.NewPostHandler(postUC)

	tmpl, err := web.Templates()
	if err != nil {
		return err
	}

	engine := router.NewRouter(router.Deps{
		Logger:    logger,
		Templates: tmpl,
		CSRF:      csrf.Config{Secret: cfg.SecretKey, Secure: cfg.CookieSecure},
		Identity:  sessionUC,
		Cookie:    cookie,
		Limiter:   ratelimiter.NewKeyedLimiter(cfg.LoginRatePerMinute, 0),
		DB:        db.NewPinger(gdb),
		Auth:      authH,
		Posts:     postH,
	})

	go sweepSessions(ctx, sessionUC, cfg.SessionSweepInterval)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// sweepSessions deletes expired sessions every interval until ctx ends.
func sweepSessions(ctx context.Context, s sweeper, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.SweepExpired(ctx)
			if err != nil {
				slog.Error("session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("expired sessions deleted", "count", n)
			}
		}
	}
}
