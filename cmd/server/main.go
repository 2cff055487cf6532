// @title socialfeed API
// @version 1.0
// @description 点赞/关注切换的 JSON 接口
// @BasePath /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/socialfeed/config"
	"github.com/d60-Lab/socialfeed/internal/api"
	"github.com/d60-Lab/socialfeed/internal/api/handler"
	"github.com/d60-Lab/socialfeed/internal/auth"
	"github.com/d60-Lab/socialfeed/internal/cache"
	"github.com/d60-Lab/socialfeed/internal/media"
	"github.com/d60-Lab/socialfeed/internal/repository"
	"github.com/d60-Lab/socialfeed/internal/service"
	"github.com/d60-Lab/socialfeed/pkg/database"
	"github.com/d60-Lab/socialfeed/pkg/logger"
	"github.com/d60-Lab/socialfeed/pkg/tracing"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()
	repos := repository.NewRepositories(db)

	var (
		store auth.SessionStore = auth.NewMemorySessionStore()
		stats *cache.StatsCache
	)
	if cfg.Redis.Addr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func(c *redis.Client) { _ = c.Close() }(client)
		store = auth.NewRedisSessionStore(client)
		stats = cache.NewStatsCache(client, cfg.Redis.StatsTTL)
	} else {
		logger.Warn("redis.addr not set; sessions are kept in memory and profile counts are not cached")
	}

	storage := media.NewLocalStorage(cfg.Media.Root, cfg.Media.URLPrefix, cfg.Media.MaxUploadMB<<20)
	sessions := auth.NewManager(store, auth.NewTokenManager(cfg.Auth.Secret, "socialfeed"), auth.ManagerConfig{
		CookieName:   cfg.Auth.CookieName,
		CookieSecure: cfg.Auth.CookieSecure,
		SessionTTL:   cfg.Auth.SessionTTL,
	})
	h := handler.New(handler.Deps{
		Auth:     service.NewAuthService(repos, cfg.Auth.BcryptCost),
		Profiles: service.NewProfileService(repos, stats, storage),
		Feed:     service.NewFeedService(repos, storage),
		Social:   service.NewSocialService(repos, stats),
		Messages: service.NewMessageService(repos, storage),
		Search:   service.NewSearchService(repos.Users),
		Sessions: sessions,
		DB:       repos,
	})

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router, err := api.NewRouter(cfg, h, sessions, storage)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
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

	logger.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if hits, misses, stale := stats.Counters(); hits+misses > 0 {
		logger.Info("profile stats cache", zap.Int64("hits", hits), zap.Int64("misses", misses), zap.Int64("stale_fills", stale))
	}
	return nil
}
