// Package web はビルド済みフロントエンドの配信と、未定義ルートの応答を担当します。
package web

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	apiPrefix = "/api"
	indexFile = "index.html"

	msgAPINotFound = "指定されたAPIは存在しません"
	msgNotFound    = "ページが見つかりません"
)

// Register は未定義ルートのハンドラーを登録します。
// dir が空なら静的配信は行わず、すべて JSON の 404 を返します。
func Register(router *gin.Engine, dir string) {
	router.NoRoute(Handler(dir))
}

// Handler は dir 配下のファイルを返し、見つからない GET リクエストには index.html を返します。
// /api 配下はクライアントのルーティング対象外なので常に JSON の 404 です。
func Handler(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqPath := c.Request.URL.Path
		if reqPath == apiPrefix || strings.HasPrefix(reqPath, apiPrefix+"/") {
			c.JSON(http.StatusNotFound, gin.H{"message": msgAPINotFound})
			return
		}
		if dir == "" || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			c.JSON(http.StatusNotFound, gin.H{"message": msgNotFound})
			return
		}

		// path.Clean にルートを付けて渡すと ".." が dir の外に出ない
		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+reqPath)))
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			c.File(name)
			return
		}

		index := filepath.Join(dir, indexFile)
		if _, err := os.Stat(index); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": msgNotFound})
			return
		}
		c.File(index)
	}
}
