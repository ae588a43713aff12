// Package session はサーバー側のセッション記録を提供します。
// クライアントには不透明なセッションIDだけを渡し、内容はここで保持します。
package session

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidTTL は有効期限が0以下の場合に返されます。
var ErrInvalidTTL = errors.New("session ttl must be positive")

// Record はセッションIDに紐づく認証済みの識別情報です。
type Record struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired は now 時点で期限切れかどうかを返します。
func (r *Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Store はセッション記録の保存先です。
type Store interface {
	// Create は username に紐づく新しいセッションを作成し、そのIDを返します。
	Create(ctx context.Context, username string, ttl time.Duration) (string, error)
	// Get は有効なセッションを返します。存在しないか期限切れなら (nil, nil) です。
	Get(ctx context.Context, id string) (*Record, error)
	// Delete はセッションを削除します。存在しなくてもエラーにはなりません。
	Delete(ctx context.Context, id string) error
}
