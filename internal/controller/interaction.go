package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/zemenay/techpulse-api/internal/dto"
	"github.com/zemenay/techpulse-api/internal/middleware"
	"github.com/zemenay/techpulse-api/internal/service"
	"github.com/zemenay/techpulse-api/pkg/response"
	"go.uber.org/zap"
)

// InteractionApi 文章互动接口：点赞与评论
type InteractionApi struct {
	logger  *zap.SugaredLogger
	service *service.InteractionService
	pages   PageConfig
}

// NewInteractionApi 创建文章互动控制器
func NewInteractionApi(svc *service.InteractionService, pages PageConfig, logger *zap.SugaredLogger) *InteractionApi {
	return &InteractionApi{logger: logger, service: svc, pages: pages}
}

// Get 获取点赞汇总和评论分页
func (api *InteractionApi) Get(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}
	page, ok := parsePage(c, api.pages)
	if !ok {
		return
	}

	resp, err := api.service.GetInteractions(c.Request.Context(), id, page, middleware.CallerFrom(c))
	if err != nil {
		writeServiceError(c, api.logger, "获取文章互动", err)
		return
	}
	response.Success(c, resp)
}

// Post 点赞或评论，由action决定
func (api *InteractionApi) Post(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}
	var req dto.InteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: action must be like or comment", err)
		return
	}

	caller := middleware.CallerFrom(c)
	switch req.Action {
	case dto.ActionLike:
		resp, err := api.service.ToggleLike(c.Request.Context(), id, caller)
		if err != nil {
			writeServiceError(c, api.logger, "切换点赞", err)
			return
		}
		response.Success(c, resp)
	case dto.ActionComment:
		resp, err := api.service.PostComment(c.Request.Context(), id, caller, req.Content, req.ParentID)
		if err != nil {
			writeServiceError(c, api.logger, "发表评论", err)
			return
		}
		response.Created(c, resp)
	}
}

// Delete 删除评论，评论ID来自查询参数commentId
func (api *InteractionApi) Delete(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}
	commentID, ok := parseID(c.Query("commentId"))
	if !ok {
		response.BadRequest(c, "commentId is required", nil)
		return
	}

	resp, err := api.service.DeleteComment(c.Request.Context(), id, commentID, middleware.CallerFrom(c))
	if err != nil {
		writeServiceError(c, api.logger, "删除评论", err)
		return
	}
	response.Success(c, resp)
}
