package controller

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zemenay/techpulse-api/internal/dto"
	"github.com/zemenay/techpulse-api/internal/middleware"
	"github.com/zemenay/techpulse-api/internal/service"
	"github.com/zemenay/techpulse-api/pkg/response"
	"go.uber.org/zap"
)

// ArticleApi 文章控制器
type ArticleApi struct {
	logger   *zap.SugaredLogger
	articles *service.ArticleService
	search   service.Searcher
	pages    PageConfig
}

// NewArticleApi 创建文章控制器
func NewArticleApi(articles *service.ArticleService, search service.Searcher, pages PageConfig, logger *zap.SugaredLogger) *ArticleApi {
	if search == nil {
		search = service.DisabledSearch{}
	}
	return &ArticleApi{logger: logger, articles: articles, search: search, pages: pages}
}

// Create 创建文章
func (api *ArticleApi) Create(c *gin.Context) {
	var req dto.ArticleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}
	resp, err := api.articles.CreateArticle(c.Request.Context(), middleware.CallerFrom(c), &req)
	if err != nil {
		writeServiceError(c, api.logger, "创建文章", err)
		return
	}
	response.Created(c, resp)
}

// Get 文章详情，已发布文章浏览量+1
func (api *ArticleApi) Get(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}
	resp, err := api.articles.GetArticle(c.Request.Context(), id, middleware.CallerFrom(c), viewerKey(c))
	if err != nil {
		writeServiceError(c, api.logger, "获取文章", err)
		return
	}
	response.Success(c, resp)
}

// Update 更新文章
func (api *ArticleApi) Update(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}
	var req dto.ArticleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}
	resp, err := api.articles.UpdateArticle(c.Request.Context(), id, middleware.CallerFrom(c), &req)
	if err != nil {
		writeServiceError(c, api.logger, "更新文章", err)
		return
	}
	response.Success(c, resp)
}

// Delete 删除文章
func (api *ArticleApi) Delete(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}
	resp, err := api.articles.DeleteArticle(c.Request.Context(), id, middleware.CallerFrom(c))
	if err != nil {
		writeServiceError(c, api.logger, "删除文章", err)
		return
	}
	response.Success(c, resp)
}

// List 已发布文章列表
func (api *ArticleApi) List(c *gin.Context) {
	page, ok := parsePage(c, api.pages)
	if !ok {
		return
	}
	var query dto.ArticleListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "invalid query", err)
		return
	}
	resp, err := api.articles.ListArticles(c.Request.Context(), query, page)
	if err != nil {
		writeServiceError(c, api.logger, "获取文章列表", err)
		return
	}
	response.Success(c, resp)
}

// Search 全文搜索
func (api *ArticleApi) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.BadRequest(c, "q is required", nil)
		return
	}
	page, ok := parsePage(c, api.pages)
	if !ok {
		return
	}
	resp, err := api.search.Search(c.Request.Context(), q, page)
	if err != nil {
		writeServiceError(c, api.logger, "搜索文章", err)
		return
	}
	response.Success(c, resp)
}

// viewerKey 浏览去重标识：登录用户用ID，匿名用户用IP
func viewerKey(c *gin.Context) string {
	if caller := middleware.CallerFrom(c); caller != nil {
		return "u:" + strconv.FormatUint(uint64(caller.UserID), 10)
	}
	return "ip:" + c.ClientIP()
}
