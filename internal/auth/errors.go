package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/login-wall/internal/logging"
)

// エラーの分類。HTTP ステータスへの対応は respondWithError で決まります。
var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("login required")
)

// 認証失敗の内部的な理由。レスポンスでは区別しません。
var (
	ErrUnknownUser      = errors.New("unknown user")
	ErrPasswordMismatch = errors.New("password mismatch")
)

// クライアントに返すメッセージ
const (
	msgCredentialsRequired = "usernameとpasswordが必要です"
	msgUsernameTaken       = "既に利用されているusernameです"
	msgUsernameTooLong     = "usernameは64文字以内で入力してください"
	msgEmailTooLong        = "emailは64文字以内で入力してください"
	msgPasswordTooLong     = "passwordは72バイト以内で入力してください"
	msgLoginFailed         = "ログイン失敗！"
	msgLoginRequired       = "ログインが必要です"
	msgSessionSaveFailed   = "セッションの保存に失敗しました"
	msgSessionDeleteFailed = "セッション削除に失敗しました"
	msgInternal            = "サーバー内部でエラーが発生しました"
)

// Error は分類とクライアント向けメッセージを持つエラーです。
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.Error() + ": " + e.Err.Error()
	}
	return e.Kind.Error() + ": " + e.Message
}

// Unwrap は errors.Is で Kind と原因の両方を辿れるようにします。
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func validationError(message string) error {
	return &Error{Kind: ErrValidation, Message: message}
}

func statusFor(kind error) int {
	switch {
	case errors.Is(kind, ErrValidation), errors.Is(kind, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(kind, ErrInvalidCredentials), errors.Is(kind, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func respondWithError(c *gin.Context, err error) {
	var authErr *Error
	switch {
	case errors.As(err, &authErr):
		c.JSON(statusFor(authErr.Kind), gin.H{
			"message": authErr.Message,
		})
	default:
		logging.FromGin(c).Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": msgInternal,
		})
	}
}
