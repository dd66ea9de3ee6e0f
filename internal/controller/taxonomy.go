package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/zemenay/techpulse-api/internal/service"
	"github.com/zemenay/techpulse-api/pkg/response"
	"go.uber.org/zap"
)

// TaxonomyApi 分类和标签控制器
type TaxonomyApi struct {
	logger  *zap.SugaredLogger
	service *service.TaxonomyService
}

// NewTaxonomyApi 创建分类标签控制器
func NewTaxonomyApi(svc *service.TaxonomyService, logger *zap.SugaredLogger) *TaxonomyApi {
	return &TaxonomyApi{logger: logger, service: svc}
}

// Categories 分类列表
func (api *TaxonomyApi) Categories(c *gin.Context) {
	list, err := api.service.Categories(c.Request.Context())
	if err != nil {
		writeServiceError(c, api.logger, "获取分类", err)
		return
	}
	response.Success(c, gin.H{"data": list})
}

// Tags 标签列表
func (api *TaxonomyApi) Tags(c *gin.Context) {
	list, err := api.service.Tags(c.Request.Context())
	if err != nil {
		writeServiceError(c, api.logger, "获取标签", err)
		return
	}
	response.Success(c, gin.H{"data": list})
}
