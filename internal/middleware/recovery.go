package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/zemenay/techpulse-api/internal/logger"
	"github.com/zemenay/techpulse-api/pkg/response"
	"go.uber.org/zap"
)

// Recovery 捕获panic并返回500
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("请求处理发生panic",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", c.GetString(logger.RequestIDKey)),
					zap.Stack("stack"),
				)
				response.InternalServerError(c, "Internal server error", fmt.Errorf("panic: %v", r))
			}
		}()
		c.Next()
	}
}
