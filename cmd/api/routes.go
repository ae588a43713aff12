package main

import (
	"database/sql"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yourusername/login-wall/internal/auth"
	"github.com/yourusername/login-wall/internal/config"
	"github.com/yourusername/login-wall/internal/database"
	"github.com/yourusername/login-wall/internal/logging"
	"github.com/yourusername/login-wall/internal/metrics"
	"github.com/yourusername/login-wall/internal/session"
	"github.com/yourusername/login-wall/internal/users"
	"github.com/yourusername/login-wall/internal/web"
)

type dependencies struct {
	users    users.Store
	sessions session.Store
	db       *sql.DB // メモリストア利用時は nil
	metrics  *metrics.Metrics
}

// newRouter はミドルウェアとルーティングを設定した gin.Engine を返します。
func newRouter(cfg *config.Config, logger zerolog.Logger, deps dependencies) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	router.Use(gin.Recovery(), logging.RequestLogger(logger))
	if deps.metrics != nil {
		router.Use(deps.metrics.Middleware())
	}

	cookieOpts := auth.CookieOptions{
		TTL:      cfg.SessionTTL,
		Secure:   cfg.IsRelease(),
		SameSite: http.SameSiteLaxMode,
	}

	// セッションストアの設定（クッキーにはセッションIDのみを署名して載せる）
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(cookieOpts.SessionOptions())
	router.Use(sessions.Sessions(auth.SessionCookieName, store))

	// CORSミドルウェアの設定（許可オリジンが無ければ同一オリジンのみ）
	if origins := cfg.AllowedOrigins(); len(origins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
		corsConfig.AllowHeaders = []string{
			"Origin",
			"Content-Type",
			"Accept",
			logging.RequestIDHeader,
		}
		corsConfig.ExposeHeaders = []string{logging.RequestIDHeader}
		router.Use(cors.New(corsConfig))
	}

	router.GET("/health", healthHandler(deps.db))
	if deps.metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.metrics.Handler()))
	}

	authManager := auth.NewManager(auth.NewService(deps.users), deps.sessions, cookieOpts, deps.metrics)

	api := router.Group("/api")
	{
		api.POST("/login", authManager.Login)
		api.POST("/signup", authManager.Signup)
		api.GET("/logout", authManager.Logout)
		api.GET("/auth_check", authManager.AuthCheck)

		protected := api.Group("")
		protected.Use(authManager.RequireLogin())
		{
			protected.GET("/users", users.ListHandler(deps.users))
		}
	}

	web.Register(router, cfg.StaticDir)
	return router, nil
}

// healthHandler はヘルスチェックエンドポイントのハンドラーです。
func healthHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, state := http.StatusOK, "ok"
		dbStatus := "memory"
		if db != nil {
			dbStatus = "ok"
			if err := database.Ping(c.Request.Context(), db); err != nil {
				logging.FromGin(c).Error().Err(err).Msg("database health check failed")
				status, state = http.StatusServiceUnavailable, "degraded"
				dbStatus = "unavailable"
			}
		}
		c.JSON(status, gin.H{
			"status":   state,
			"service":  "login-wall-api",
			"version":  "0.1.0",
			"database": dbStatus,
		})
	}
}
