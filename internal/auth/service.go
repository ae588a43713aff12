// Package auth は認証・認可機能を提供します。
//
// Service はユーザー登録と資格情報の検証を担い、Manager がそれを
// セッションクッキーと HTTP ハンドラーに結び付けます。
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/yourusername/login-wall/internal/users"
)

// Service はサインアップとログインの検証を行います。
type Service struct {
	users    users.Store
	hashCost int

	// 存在しないユーザーでも照合時間を揃えるためのハッシュ
	dummyOnce sync.Once
	dummyHash string
	dummyErr  error
}

// ServiceOption は Service の設定です。
type ServiceOption func(*Service)

// WithHashCost は bcrypt のコストを変更します。テスト以外では既定値を使います。
func WithHashCost(cost int) ServiceOption {
	return func(s *Service) {
		s.hashCost = cost
	}
}

// NewService は Service を作成します。
func NewService(store users.Store, opts ...ServiceOption) *Service {
	s := &Service{
		users:    store,
		hashCost: DefaultHashCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup はユーザーを登録し、保存された username を返します。
func (s *Service) Signup(ctx context.Context, username, email, password string) (string, error) {
	if username == "" || password == "" {
		return "", validationError(msgCredentialsRequired)
	}
	if utf8.RuneCountInString(username) > users.MaxUsernameLength {
		return "", validationError(msgUsernameTooLong)
	}
	if utf8.RuneCountInString(email) > users.MaxEmailLength {
		return "", validationError(msgEmailTooLong)
	}
	if len(password) > maxPasswordBytes {
		return "", validationError(msgPasswordTooLong)
	}

	// 事前確認は早期リターン用。最終的な判定は保存時の一意制約に任せる
	existing, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		return "", &Error{Kind: ErrConflict, Message: msgUsernameTaken, Err: users.ErrUsernameTaken}
	}

	hash, err := HashPassword(password, s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	stored, err := s.users.Insert(ctx, username, email, hash)
	if err != nil {
		if errors.Is(err, users.ErrUsernameTaken) {
			return "", &Error{Kind: ErrConflict, Message: msgUsernameTaken, Err: err}
		}
		return "", fmt.Errorf("insert user: %w", err)
	}
	return stored, nil
}

// Login は資格情報を検証し、一致したユーザーを返します。
// 失敗理由は ErrUnknownUser / ErrPasswordMismatch で区別できますが、
// どちらも ErrInvalidCredentials として同じメッセージになります。
func (s *Service) Login(ctx context.Context, username, password string) (*users.User, error) {
	if username == "" || password == "" {
		return nil, validationError(msgCredentialsRequired)
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		s.burnCompare(password)
		return nil, &Error{Kind: ErrInvalidCredentials, Message: msgLoginFailed, Err: ErrUnknownUser}
	}

	ok, err := ComparePassword(user.HashedPassword, password)
	if err != nil {
		return nil, fmt.Errorf("compare password: %w", err)
	}
	if !ok {
		return nil, &Error{Kind: ErrInvalidCredentials, Message: msgLoginFailed, Err: ErrPasswordMismatch}
	}
	return user, nil
}

func (s *Service) burnCompare(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, s.dummyErr = HashPassword("login-wall-dummy-password", s.hashCost)
	})
	if s.dummyErr != nil {
		return
	}
	_, _ = ComparePassword(s.dummyHash, password)
}
