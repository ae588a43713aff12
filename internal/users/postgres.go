package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation は PostgreSQL の unique_violation です。
const uniqueViolation = "23505"

// PostgresStore は users テーブルに対する Store 実装です。
// *sql.DB の所有者は呼び出し側で、ここでは閉じません。
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore は PostgresStore を作成します。
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// FindByUsername は username でユーザーを検索します。
func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	query :=
		`SELECT id, username, email, hashed_password, created_at FROM users
		 WHERE username = $1`

	user := &User{}
	err := s.db.QueryRowContext(ctx, query, username).
		Scan(&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

// Insert はユーザーを追加します。username の一意制約違反は ErrUsernameTaken になります。
func (s *PostgresStore) Insert(ctx context.Context, username, email, passwordHash string) (string, error) {
	query :=
		`INSERT INTO users (username, email, hashed_password)
		 VALUES ($1, $2, $3)
		 RETURNING username`

	var stored string
	err := s.db.QueryRowContext(ctx, query, username, email, passwordHash).Scan(&stored)
	if err != nil {
		if isUniqueViolation(err) {
			return "", ErrUsernameTaken
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return stored, nil
}

// List は全ユーザーを返します。
func (s *PostgresStore) List(ctx context.Context) ([]User, error) {
	query := `SELECT id, username, email, hashed_password, created_at FROM users ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	list := make([]User, 0)
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		list = append(list, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolation
}
