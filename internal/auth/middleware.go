package auth

import (
	"github.com/gin-gonic/gin"
)

// RequireLogin はセッションを検証するミドルウェアを返します。
// 有効なセッションが無ければ後続のハンドラーを実行せずに 401 を返します。
func (m *Manager) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, record, err := m.currentSession(c)
		if err != nil {
			respondWithError(c, err)
			c.Abort()
			return
		}
		if record == nil {
			m.metrics.ObserveGateRejection()
			respondWithError(c, &Error{Kind: ErrUnauthorized, Message: msgLoginRequired})
			c.Abort()
			return
		}

		c.Set(ContextUserKey, record.Username)
		c.Next()
	}
}
