// Package users はユーザー情報（認証情報ストア）を提供します。
package users

import "time"

// 列幅と同じ上限
const (
	MaxUsernameLength = 64
	MaxEmailLength    = 64
)

// User は users テーブルの1行を表します。
type User struct {
	ID             int64
	Username       string
	Email          string
	HashedPassword string
	CreatedAt      time.Time
}

// PublicUser は API で返却するユーザー情報です。パスワードハッシュは含みません。
type PublicUser struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Public はハッシュを除いた公開用の表現を返します。
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
