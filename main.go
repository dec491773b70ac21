package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"modpanel/channelctx"
	"modpanel/config"
	"modpanel/handlers"
	"modpanel/logger"
	"modpanel/metrics"
	"modpanel/middleware"
	"modpanel/store"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Create cancellable root context for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	zl, err := logger.New(cfg.Debug, logger.FileOptions{
		Path:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	// Initialize store
	s, err := store.New(cfg.DBPath)
	if err != nil {
		zl.Fatal("failed to initialize database", zap.Error(err))
	}
	defer s.Close()

	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		_, created, err := s.EnsureUser(cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			zl.Fatal("failed to seed admin user", zap.Error(err))
		}
		if created {
			zl.Info("admin user created", zap.String("username", cfg.AdminUsername))
		}
	}

	var backend middleware.SessionBackend = s
	if cfg.SessionBackend == config.SessionBackendRedis {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			zl.Fatal("redis ping failed", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		backend = store.NewRedisSessionStore(rdb)
	}
	zl.Info("session backend ready", zap.String("backend", cfg.SessionBackend))

	sessions := middleware.NewSessions(backend, cfg.SessionSecret, cfg.SessionTTL, cfg.CookieSecure, zl)
	deps := handlers.Deps{
		Store:    s,
		Resolver: channelctx.NewResolver(s, sessions),
		Logger:   zl,
		Metrics:  metrics.NewCollector(),
	}
	app := handlers.NewApp(deps, sessions,
		middleware.NewLoginLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst, cfg.TrustProxy),
		handlers.Options{
			MediaRoot:      cfg.MediaRoot,
			MaxUploadBytes: cfg.MaxUploadBytes,
			Location:       time.Local,
		},
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		zl.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server shutdown", zap.Error(err))
	}
	zl.Info("server stopped")
}
