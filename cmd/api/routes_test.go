package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/login-wall/internal/auth"
	"github.com/yourusername/login-wall/internal/config"
	"github.com/yourusername/login-wall/internal/metrics"
	"github.com/yourusername/login-wall/internal/session"
	"github.com/yourusername/login-wall/internal/users"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:               "0",
		GinMode:            gin.TestMode,
		CORSAllowedOrigins: "http://localhost:5173",
		SessionSecret:      "0123456789abcdef0123456789abcdef",
		SessionBackend:     config.SessionBackendMemory,
		SessionTTL:         24 * time.Hour,
		MetricsEnabled:     true,
	}
}

func testRouter(t *testing.T, cfg *config.Config, deps dependencies) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if deps.users == nil {
		deps.users = users.NewMemoryStore()
	}
	if deps.sessions == nil {
		deps.sessions = session.NewMemoryStore()
	}
	router, err := newRouter(cfg, zerolog.New(io.Discard), deps)
	require.NoError(t, err)
	return router
}

func send(router *gin.Engine, method, target string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthWithMemoryStore(t *testing.T) {
	router := testRouter(t, testConfig(), dependencies{})

	rec := send(router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, "memory", payload["database"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHealthReportsDatabaseOutage(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	router := testRouter(t, testConfig(), dependencies{db: db})

	rec := send(router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"unavailable"`)
	assert.NotContains(t, rec.Body.String(), "connection refused")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFullFlowThroughRouter(t *testing.T) {
	m := metrics.New()
	router := testRouter(t, testConfig(), dependencies{metrics: m})

	rec := send(router, http.MethodPost, "/api/signup", gin.H{"username": "goku", "email": "goku@ex.com", "password": "kamehameha"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = send(router, http.MethodPost, "/api/login", gin.H{"username": "goku", "password": "kamehameha"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)
	assert.Equal(t, http.SameSiteLaxMode, sessionCookie.SameSite)
	assert.False(t, sessionCookie.Secure)

	rec = send(router, http.MethodGet, "/api/users", nil, sessionCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"goku"`)
	assert.NotContains(t, rec.Body.String(), "hashed_password")

	rec = send(router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `loginwall_auth_login_attempts_total{result="success"} 1`)
	assert.Contains(t, rec.Body.String(), `loginwall_auth_signups_total{result="success"} 1`)
}

func TestSecureCookieInRelease(t *testing.T) {
	cfg := testConfig()
	cfg.GinMode = gin.ReleaseMode
	router := testRouter(t, cfg, dependencies{})

	send(router, http.MethodPost, "/api/signup", gin.H{"username": "goku", "password": "kamehameha"})
	rec := send(router, http.MethodPost, "/api/login", gin.H{"username": "goku", "password": "kamehameha"})
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.True(t, cookies[0].Secure)
	assert.True(t, cookies[0].HttpOnly)
}

func TestMetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsEnabled = false
	router := testRouter(t, cfg, dependencies{})

	rec := send(router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflightAllowsCredentials(t *testing.T) {
	router := testRouter(t, testConfig(), dependencies{})

	req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestUnknownAPIRoute(t *testing.T) {
	router := testRouter(t, testConfig(), dependencies{})

	rec := send(router, http.MethodGet, "/api/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "message")
}

func TestSetupSessionStore(t *testing.T) {
	cfg := testConfig()

	store, closeFn, err := setupSessionStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &session.MemoryStore{}, store)
	require.NoError(t, closeFn())

	mr := miniredis.RunT(t)
	cfg.SessionBackend = config.SessionBackendRedis
	cfg.SessionRedisURL = "redis://" + mr.Addr() + "/0"

	store, closeFn, err = setupSessionStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &session.RedisStore{}, store)

	id, err := store.Create(context.Background(), "goku", time.Hour)
	require.NoError(t, err)
	assert.True(t, mr.Exists("session:"+id))
	require.NoError(t, closeFn())

	cfg.SessionRedisURL = "not-a-url"
	_, _, err = setupSessionStore(context.Background(), cfg)
	assert.Error(t, err)
}

func TestSetupUserStoreWithoutDatabase(t *testing.T) {
	store, db, err := setupUserStore(context.Background(), testConfig(), zerolog.New(io.Discard))
	require.NoError(t, err)
	assert.Nil(t, db)
	assert.IsType(t, &users.MemoryStore{}, store)
}
