package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zemenay/techpulse-api/internal/service"
	"github.com/zemenay/techpulse-api/pkg/pagination"
	"github.com/zemenay/techpulse-api/pkg/response"
	"go.uber.org/zap"
)

// PageConfig 分页默认值和上限
type PageConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// errorStatus 业务错误对应的HTTP状态码
var errorStatus = []struct {
	err    error
	status int
}{
	{service.ErrUnauthenticated, http.StatusUnauthorized},
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrUserDisabled, http.StatusForbidden},
	{service.ErrArticleNotFound, http.StatusNotFound},
	{service.ErrCommentNotFound, http.StatusNotFound},
	{service.ErrNotificationNotFound, http.StatusNotFound},
	{service.ErrOAuthDisabled, http.StatusNotFound},
	{service.ErrArticleUnpublished, http.StatusBadRequest},
	{service.ErrEmptyContent, http.StatusBadRequest},
	{service.ErrContentTooLong, http.StatusBadRequest},
	{service.ErrInvalidParent, http.StatusBadRequest},
	{service.ErrInvalidName, http.StatusBadRequest},
	{service.ErrOAuthState, http.StatusBadRequest},
	{service.ErrEmailTaken, http.StatusConflict},
	{service.ErrSearchUnavailable, http.StatusServiceUnavailable},
}

// writeServiceError 把业务错误转换为响应，未知错误记录日志并返回500
func writeServiceError(c *gin.Context, logger *zap.SugaredLogger, op string, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			response.Error(c, e.status, e.err.Error(), err)
			return
		}
	}
	logger.Errorf("%s失败: %v", op, err)
	response.InternalServerError(c, "Internal server error", err)
}

// parseID 解析路径或查询参数中的正整数ID
func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parsePage 解析page和limit查询参数
func parsePage(c *gin.Context, cfg PageConfig) (pagination.Params, bool) {
	page, err := pagination.Parse(c.Query("page"), c.Query("limit"), cfg.DefaultLimit, cfg.MaxLimit)
	if err != nil {
		response.BadRequest(c, err.Error(), nil)
		return pagination.Params{}, false
	}
	return page, true
}

// articleID 解析路径中的文章ID，失败时写入400
func articleID(c *gin.Context) (uint, bool) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid article id", nil)
	}
	return id, ok
}
