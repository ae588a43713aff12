package users

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/login-wall/internal/logging"
)

// Lister は全ユーザーの取得を提供します。
type Lister interface {
	List(ctx context.Context) ([]User, error)
}

// ListHandler は GET /api/users のハンドラーを返します。
// 認証ゲートの内側に登録する前提で、セッションの確認は行いません。
func ListHandler(store Lister) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := store.List(c.Request.Context())
		if err != nil {
			logging.FromGin(c).Error().Err(err).Msg("failed to list users")
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "ユーザー情報の取得に失敗しました",
			})
			return
		}

		payload := make([]PublicUser, len(list))
		for i := range list {
			payload[i] = list[i].Public()
		}
		c.JSON(http.StatusOK, payload)
	}
}
