package main

import (
	"context"
	"database/sql"
	"fmt"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/yourusername/login-wall/internal/config"
	"github.com/yourusername/login-wall/internal/database"
	"github.com/yourusername/login-wall/internal/session"
	"github.com/yourusername/login-wall/internal/users"
)

// setupUserStore は DATABASE_URL があれば PostgreSQL を、無ければメモリストアを返します。
// 返す *sql.DB はメモリストアのとき nil です。
func setupUserStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (users.Store, *sql.DB, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn().Msg("DATABASE_URL is not set; users are kept in memory")
		return users.NewMemoryStore(), nil, nil
	}

	db, err := database.Open(ctx, cfg.DatabaseURL, database.Options{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return users.NewPostgresStore(db), db, nil
}

// setupSessionStore は SESSION_BACKEND に応じたセッションストアと、その終了処理を返します。
func setupSessionStore(ctx context.Context, cfg *config.Config) (session.Store, func() error, error) {
	if cfg.SessionBackend != config.SessionBackendRedis {
		return session.NewMemoryStore(), func() error { return nil }, nil
	}

	opt, err := redis.ParseURL(cfg.SessionRedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid SESSION_REDIS_URL: %w", err)
	}

	redisClient := redis.NewClient(opt)
	store := session.NewRedisStore(redisClient)
	if err := store.Ping(ctx); err != nil {
		redisClient.Close()
		return nil, nil, fmt.Errorf("redis ping error: %w", err)
	}
	return store, redisClient.Close, nil
}
