package users

import (
	"context"
	"errors"
)

// ErrUsernameTaken は同じ username のユーザーが既に存在する場合に返されます。
var ErrUsernameTaken = errors.New("username already taken")

// Store は認証情報ストアの境界です。
type Store interface {
	// FindByUsername は該当ユーザーがいない場合 (nil, nil) を返します。
	FindByUsername(ctx context.Context, username string) (*User, error)
	// Insert は新しいユーザーを保存し、保存された username を返します。
	Insert(ctx context.Context, username, email, passwordHash string) (string, error)
	// List は全ユーザーを id 順で返します。
	List(ctx context.Context) ([]User, error)
}
