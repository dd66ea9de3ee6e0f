package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zemenay/techpulse-api/internal/config"
	"github.com/zemenay/techpulse-api/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTokens(t *testing.T) *auth.TokenManager {
	t.Helper()
	m, err := auth.NewTokenManager(config.JWTConfig{SecretKey: "mw-test", AccessExpireSeconds: 600, RefreshExpireSeconds: 1200}, nil, nil)
	require.NoError(t, err)
	return m
}

func callerEcho(c *gin.Context) {
	caller := CallerFrom(c)
	if caller == nil {
		c.String(http.StatusOK, "anonymous")
		return
	}
	c.String(http.StatusOK, "user:%d", caller.UserID)
}

func serve(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticator(t *testing.T) {
	t.Parallel()
	tokens := newTokens(t)
	a := NewAuthenticator(tokens)

	r := gin.New()
	r.GET("/required", a.JWTAuth(), callerEcho)
	r.GET("/optional", a.OptionalAuth(), callerEcho)
	r.GET("/admin", a.AdminAuth(), callerEcho)

	userPair, err := tokens.GenerateTokenPair(auth.Identity{UserID: 5, Role: "user"})
	require.NoError(t, err)
	adminPair, err := tokens.GenerateTokenPair(auth.Identity{UserID: 1, Role: "admin"})
	require.NoError(t, err)

	tests := []struct {
		path   string
		token  string
		status int
		body   string
	}{
		{"/required", "", http.StatusUnauthorized, `{"error":"Unauthorized"}`},
		{"/required", "garbage", http.StatusUnauthorized, `{"error":"Unauthorized"}`},
		{"/required", userPair.RefreshToken, http.StatusUnauthorized, `{"error":"Unauthorized"}`},
		{"/required", userPair.AccessToken, http.StatusOK, "user:5"},
		{"/optional", "", http.StatusOK, "anonymous"},
		{"/optional", "garbage", http.StatusOK, "anonymous"},
		{"/optional", userPair.AccessToken, http.StatusOK, "user:5"},
		{"/admin", userPair.AccessToken, http.StatusForbidden, `{"error":"Forbidden"}`},
		{"/admin", adminPair.AccessToken, http.StatusOK, "user:1"},
	}
	for _, tt := range tests {
		w := serve(r, http.MethodGet, tt.path, tt.token)
		assert.Equal(t, tt.status, w.Code, tt.path)
		assert.Equal(t, tt.body, w.Body.String(), tt.path)
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, http.MethodGet, "/", "")
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestIPRateLimiter(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(1, 2, time.Minute)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("1.1.1.1"))
	assert.False(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("2.2.2.2"))

	now = now.Add(time.Second)
	assert.True(t, l.Allow("1.1.1.1"))

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, l.Cleanup())
}

func TestRateLimit_OnlyWrites(t *testing.T) {
	t.Parallel()
	l := NewIPRateLimiter(0.001, 1, time.Minute)
	r := gin.New()
	r.Use(RateLimit(config.RateLimitConfig{Enabled: true}, l))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusCreated) })

	assert.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/", "").Code)
	w := serve(r, http.MethodPost, "/", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"Too many requests"}`, w.Body.String())
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", "").Code)
}

func TestRecovery(t *testing.T) {
	t.Parallel()
	r := gin.New()
	r.Use(Recovery())
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := serve(r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

func TestNotBlankValidator(t *testing.T) {
	require.NoError(t, RegisterValidators())

	type payload struct {
		Title string  `json:"title" binding:"required,notblank"`
		Note  *string `json:"note" binding:"omitempty,notblank"`
	}
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var p payload
		if err := c.ShouldBindJSON(&p); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	for body, want := range map[string]int{
		`{"title":"ok"}`:               http.StatusOK,
		`{"title":"   "}`:              http.StatusBadRequest,
		`{"title":"ok","note":" "}`:    http.StatusBadRequest,
		`{"title":"ok","note":"fine"}`: http.StatusOK,
	} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, body)
	}
}
