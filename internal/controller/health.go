package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck 依赖健康检查
type HealthCheck func(ctx context.Context) error

// HealthApi 健康检查控制器
type HealthApi struct {
	checks map[string]HealthCheck
}

// NewHealthApi 创建健康检查控制器
func NewHealthApi(checks map[string]HealthCheck) *HealthApi {
	return &HealthApi{checks: checks}
}

// Health 逐个检查依赖，任一失败返回503
func (api *HealthApi) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(api.checks))
	for name, check := range api.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{"status": overall, "checks": results})
}
