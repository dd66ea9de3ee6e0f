package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/zemenay/techpulse-api/internal/middleware"
	"github.com/zemenay/techpulse-api/internal/service"
	"github.com/zemenay/techpulse-api/pkg/response"
	"go.uber.org/zap"
)

// NotificationApi 通知控制器
type NotificationApi struct {
	logger  *zap.SugaredLogger
	service *service.NotificationService
	pages   PageConfig
}

// NewNotificationApi 创建通知控制器
func NewNotificationApi(svc *service.NotificationService, pages PageConfig, logger *zap.SugaredLogger) *NotificationApi {
	return &NotificationApi{logger: logger, service: svc, pages: pages}
}

// List 当前用户通知
func (api *NotificationApi) List(c *gin.Context) {
	page, ok := parsePage(c, api.pages)
	if !ok {
		return
	}
	resp, err := api.service.List(c.Request.Context(), middleware.CallerFrom(c), page)
	if err != nil {
		writeServiceError(c, api.logger, "获取通知", err)
		return
	}
	response.Success(c, resp)
}

// MarkRead 标记已读
func (api *NotificationApi) MarkRead(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid notification id", nil)
		return
	}
	resp, err := api.service.MarkRead(c.Request.Context(), id, middleware.CallerFrom(c))
	if err != nil {
		writeServiceError(c, api.logger, "标记通知已读", err)
		return
	}
	response.Success(c, resp)
}
