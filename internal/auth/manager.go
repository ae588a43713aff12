package auth

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/login-wall/internal/metrics"
	"github.com/yourusername/login-wall/internal/session"
)

const (
	// SessionCookieName はセッションIDを運ぶ署名付きクッキーの名前です。
	SessionCookieName = "lw_session"
	sessionKeyID      = "sid"
)

// ContextUserKey は、ハンドラー間でログイン済みユーザー名を共有するためのキーです。
const ContextUserKey = "auth.user"

// CookieOptions はセッションクッキーの属性をまとめたものです。
type CookieOptions struct {
	TTL      time.Duration
	Secure   bool
	SameSite http.SameSite
}

// SessionOptions は gin-contrib/sessions に渡すクッキー属性を返します。
func (o CookieOptions) SessionOptions() sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   int(o.TTL.Seconds()),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: o.SameSite,
	}
}

// expiredOptions はクッキー削除用の属性です。
func (o CookieOptions) expiredOptions() sessions.Options {
	opts := o.SessionOptions()
	opts.MaxAge = -1
	return opts
}

// Manager は認証処理とセッションを結び付ける構造体です。
type Manager struct {
	svc      *Service
	sessions session.Store
	cookie   CookieOptions
	metrics  *metrics.Metrics
}

// NewManager は認証マネージャーを作成します。metrics は nil でも構いません。
func NewManager(svc *Service, store session.Store, cookie CookieOptions, m *metrics.Metrics) *Manager {
	return &Manager{
		svc:      svc,
		sessions: store,
		cookie:   cookie,
		metrics:  m,
	}
}

// currentSession はクッキーのセッションIDを解決します。
// 未ログイン・期限切れ・削除済みの場合は record が nil です。
func (m *Manager) currentSession(c *gin.Context) (id string, record *session.Record, err error) {
	cookieSession := sessions.Default(c)
	id, _ = cookieSession.Get(sessionKeyID).(string)
	if id == "" {
		return "", nil, nil
	}
	record, err = m.sessions.Get(c.Request.Context(), id)
	if err != nil {
		return id, nil, err
	}
	return id, record, nil
}

// CurrentUser は RequireLogin を通過したリクエストのユーザー名を返します。
func CurrentUser(c *gin.Context) (string, bool) {
	username := c.GetString(ContextUserKey)
	return username, username != ""
}
