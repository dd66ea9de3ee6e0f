package controller

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zemenay/techpulse-api/internal/service"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestWriteServiceError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		code int
		msg  string
	}{
		{service.ErrUnauthenticated, http.StatusUnauthorized, service.ErrUnauthenticated.Error()},
		{service.ErrForbidden, http.StatusForbidden, service.ErrForbidden.Error()},
		{fmt.Errorf("lookup: %w", service.ErrArticleNotFound), http.StatusNotFound, service.ErrArticleNotFound.Error()},
		{service.ErrArticleUnpublished, http.StatusBadRequest, service.ErrArticleUnpublished.Error()},
		{service.ErrEmailTaken, http.StatusConflict, service.ErrEmailTaken.Error()},
		{service.ErrSearchUnavailable, http.StatusServiceUnavailable, service.ErrSearchUnavailable.Error()},
		{errors.New("dial tcp: connection refused"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		writeServiceError(c, zap.NewNop().Sugar(), "测试", tt.err)

		assert.Equal(t, tt.code, w.Code, tt.err.Error())
		assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tt.msg), w.Body.String())
		assert.True(t, c.IsAborted())
	}
}

func TestParseID(t *testing.T) {
	t.Parallel()

	for raw, want := range map[string]bool{"1": true, "42": true, "0": false, "-1": false, "abc": false, "": false} {
		_, ok := parseID(raw)
		assert.Equal(t, want, ok, raw)
	}
}

func TestParsePage(t *testing.T) {
	t.Parallel()
	cfg := PageConfig{DefaultLimit: 10, MaxLimit: 50}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=3&limit=500", nil)
	page, ok := parsePage(c, cfg)
	require.True(t, ok)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 50, page.Limit)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=zero", nil)
	_, ok = parsePage(c, cfg)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestViewerKey(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "10.0.0.7:5555"
	assert.Equal(t, "ip:10.0.0.7", viewerKey(c))
}
