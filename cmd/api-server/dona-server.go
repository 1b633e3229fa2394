package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"donaplus/db/migrations"
	"donaplus/internal/auth"
	"donaplus/internal/backend"
	"donaplus/internal/config"
	"donaplus/internal/handlers"
	"donaplus/internal/middleware"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if !cfg.Server.Production() {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// migrate после миграций логирует версию схемы, сбой чтения версии запуск не останавливает
func migrate(logger *slog.Logger, db *sql.DB, apply func(*sql.DB) error, version func(*sql.DB) (int64, error)) error {
	if err := apply(db); err != nil {
		return err
	}
	v, err := version(db)
	if err != nil {
		logger.Warn("read migration version", "error", err)
		return nil
	}
	logger.Info("migrations applied", "version", v)
	return nil
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// без DONA_BACKEND_URL и DONA_BACKEND_ANON_KEY сервис не стартует
	client, err := backend.GetOrCreateClient(backend.FromConfig(cfg.Backend))
	if err != nil {
		return err
	}
	defer backend.ResetClient()

	if sqlDB := client.DB(); sqlDB != nil && cfg.Backend.Migrate {
		if err := migrate(logger, sqlDB.DB, migrations.Run, migrations.Version); err != nil {
			return err
		}
	}

	var limiter auth.AttemptLimiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, sign-in attempts are not limited", "addr", cfg.Redis.Addr, "error", err)
		} else {
			limiter = auth.NewRedisLimiter(rdb, cfg.Auth.MaxSignInAttempts, cfg.Auth.AttemptWindow)
		}
	}

	provider, err := auth.NewProvider(ctx, cfg.Auth, cfg.Server.Production(), client.Store(), limiter)
	if err != nil {
		return err
	}

	opts := client.Options()
	sessionOpts := middleware.SessionOptions{
		Secure:  cfg.Server.Production(),
		Persist: opts.PersistSession,
		TTL:     opts.SessionTTL,
		Rolling: opts.AutoRefreshToken,
		Session: auth.SessionOptions{
			LoginPath:     cfg.Routes.LoginPath,
			DashboardPath: cfg.Routes.DashboardPath,
		},
	}
	cookies := middleware.NewCookieStore([]byte(cfg.Auth.SessionSecret), sessionOpts)

	h := handlers.NewHandler(client.Store(), client.Realtime(), logger)
	router := handlers.NewRouter(h, handlers.RouterOptions{
		APIKey:      client.AnonKey(),
		CORSOrigins: cfg.Server.CORSOrigins,
		Routes:      cfg.Routes,
		Production:  cfg.Server.Production(),
		Sessions:    middleware.NewSessionBridge(cookies, provider, client.Store(), logger, sessionOpts),
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "environment", cfg.Server.Environment)
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

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// SSE-потоки держат соединения, Close подписок realtime их завершает
	client.Realtime().Close()
	return srv.Shutdown(shutdownCtx)
}
