// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/login-wall/internal/config"
	"github.com/yourusername/login-wall/internal/logging"
	"github.com/yourusername/login-wall/internal/metrics"
	"github.com/yourusername/login-wall/internal/session"
)

const (
	janitorInterval = 10 * time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger := logging.New(cfg.LogLevel, cfg.LogPretty)
	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	if cfg.SessionSecret == "" {
		// 開発用: 再起動するとクッキーは無効になる
		secret, err := session.NewID()
		if err != nil {
			return err
		}
		cfg.SessionSecret = secret
		logger.Warn().Msg("SESSION_SECRET is not set; using a random secret for this process")
	}

	userStore, db, err := setupUserStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	sessionStore, closeSessions, err := setupSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	if mem, ok := sessionStore.(*session.MemoryStore); ok {
		janitorLog := logger.With().Str(logging.FieldComponent, "session-janitor").Logger()
		go mem.RunJanitor(ctx, janitorInterval, func(removed int) {
			janitorLog.Debug().Int("removed", removed).Msg("purged expired sessions")
		})
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	router, err := newRouter(cfg, logger, dependencies{
		users:    userStore,
		sessions: sessionStore,
		db:       db,
		metrics:  m,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("mode", cfg.GinMode).Str("session_backend", cfg.SessionBackend).Msg("starting API server")
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

	logger.Info().Msg("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
