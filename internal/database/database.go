// Package database は PostgreSQL への接続とマイグレーションを提供します。
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/yourusername/login-wall/internal/database/migrations"
)

// pingTimeout は起動時の疎通確認に使う待ち時間です。
const pingTimeout = 3 * time.Second

// Options は接続プールの設定です。
type Options struct {
	MaxOpenConns int
	MaxIdleConns int
}

// Open は pgx ドライバで接続し、疎通を確認してから返します。
func Open(ctx context.Context, dsn string, opts Options) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}

	if err := Ping(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, nil
}

// Ping はタイムアウト付きで疎通を確認します。
func Ping(parent context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(parent, pingTimeout)
	defer cancel()
	return db.PingContext(ctx)
}

// Migrate は埋め込まれたマイグレーションを適用します。
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	return nil
}
