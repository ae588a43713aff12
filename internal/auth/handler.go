package auth

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/login-wall/internal/logging"
	"github.com/yourusername/login-wall/internal/metrics"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type signupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

// Login は POST /api/login のハンドラーです。
func (m *Manager) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		m.metrics.ObserveLogin(metrics.ResultRejected)
		c.JSON(http.StatusBadRequest, gin.H{
			"message": msgCredentialsRequired,
		})
		return
	}

	log := logging.FromGin(c)
	user, err := m.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			m.metrics.ObserveLogin(metrics.ResultInvalid)
			log.Debug().Str(logging.FieldUser, req.Username).Err(err).Msg("login failed")
		case errors.Is(err, ErrValidation):
			m.metrics.ObserveLogin(metrics.ResultRejected)
		default:
			m.metrics.ObserveLogin(metrics.ResultError)
		}
		respondWithError(c, err)
		return
	}

	// 既存のセッションは破棄して新しいIDを払い出す
	if oldID, _, _ := m.currentSession(c); oldID != "" {
		if err := m.sessions.Delete(c.Request.Context(), oldID); err != nil {
			log.Warn().Err(err).Msg("failed to discard previous session")
		}
	}

	id, err := m.sessions.Create(c.Request.Context(), user.Username, m.cookie.TTL)
	if err != nil {
		m.metrics.ObserveLogin(metrics.ResultError)
		log.Error().Err(err).Msg("failed to create session")
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": msgSessionSaveFailed,
		})
		return
	}

	cookieSession := sessions.Default(c)
	cookieSession.Clear()
	cookieSession.Options(m.cookie.SessionOptions())
	cookieSession.Set(sessionKeyID, id)
	if err := cookieSession.Save(); err != nil {
		_ = m.sessions.Delete(c.Request.Context(), id)
		m.metrics.ObserveLogin(metrics.ResultError)
		log.Error().Err(err).Msg("failed to write session cookie")
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": msgSessionSaveFailed,
		})
		return
	}

	m.metrics.ObserveLogin(metrics.ResultSuccess)
	log.Info().Str(logging.FieldUser, user.Username).Msg("login succeeded")
	c.JSON(http.StatusOK, gin.H{
		"message": "ログイン成功！ Hello, " + user.Username,
	})
}

// Signup は POST /api/signup のハンドラーです。
func (m *Manager) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		m.metrics.ObserveSignup(metrics.ResultRejected)
		c.JSON(http.StatusBadRequest, gin.H{
			"message": msgCredentialsRequired,
		})
		return
	}

	username, err := m.svc.Signup(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrConflict):
			m.metrics.ObserveSignup(metrics.ResultConflict)
		case errors.Is(err, ErrValidation):
			m.metrics.ObserveSignup(metrics.ResultRejected)
		default:
			m.metrics.ObserveSignup(metrics.ResultError)
		}
		respondWithError(c, err)
		return
	}

	m.metrics.ObserveSignup(metrics.ResultSuccess)
	logging.FromGin(c).Info().Str(logging.FieldUser, username).Msg("signup completed")
	c.JSON(http.StatusOK, gin.H{
		"message":  "サインアップが完了しました",
		"username": username,
	})
}

// Logout は GET /api/logout のハンドラーです。
// セッションが無い状態で呼ばれても成功として扱います。
func (m *Manager) Logout(c *gin.Context) {
	log := logging.FromGin(c)
	cookieSession := sessions.Default(c)

	if id, _ := cookieSession.Get(sessionKeyID).(string); id != "" {
		if err := m.sessions.Delete(c.Request.Context(), id); err != nil {
			log.Error().Err(err).Msg("failed to delete session")
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": msgSessionDeleteFailed,
			})
			return
		}
	}

	cookieSession.Clear()
	cookieSession.Options(m.cookie.expiredOptions())
	if err := cookieSession.Save(); err != nil {
		log.Error().Err(err).Msg("failed to clear session cookie")
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": msgSessionDeleteFailed,
		})
		return
	}

	m.metrics.ObserveLogout()
	c.JSON(http.StatusOK, gin.H{
		"message": "ログアウト成功",
	})
}

// AuthCheck は GET /api/auth_check のハンドラーです。状態を変更せず、常に 200 を返します。
func (m *Manager) AuthCheck(c *gin.Context) {
	_, record, err := m.currentSession(c)
	if err != nil {
		logging.FromGin(c).Error().Err(err).Msg("session lookup failed during auth check")
	}
	if record == nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user": gin.H{
			"username": record.Username,
		},
	})
}
