package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/zemenay/techpulse-api/internal/dto"
	"github.com/zemenay/techpulse-api/internal/metrics"
	"github.com/zemenay/techpulse-api/internal/model"
	"github.com/zemenay/techpulse-api/internal/repository"
	"github.com/zemenay/techpulse-api/pkg/auth"
	"github.com/zemenay/techpulse-api/pkg/cache"
	"github.com/zemenay/techpulse-api/pkg/markdown"
	"github.com/zemenay/techpulse-api/pkg/pagination"
	"go.uber.org/zap"
)

const (
	maxNameLength     = 50
	autoSummaryLength = 200
)

// ArticleIndexer 搜索索引维护
type ArticleIndexer interface {
	IndexArticle(ctx context.Context, article *model.Article) error
	DeleteArticle(ctx context.Context, articleID uint) error
}

type nopIndexer struct{}

func (nopIndexer) IndexArticle(context.Context, *model.Article) error { return nil }
func (nopIndexer) DeleteArticle(context.Context, uint) error          { return nil }

// ArticleService 文章服务
type ArticleService struct {
	articles   repository.ArticleRepository
	likes      repository.LikeRepository
	cache      cache.ArticleCache
	indexer    ArticleIndexer
	viewWindow time.Duration
	logger     *zap.SugaredLogger
}

// ArticleOption 文章服务可选配置
type ArticleOption func(*ArticleService)

// WithArticleCache 使用缓存
func WithArticleCache(c cache.ArticleCache) ArticleOption {
	return func(s *ArticleService) { s.cache = c }
}

// WithIndexer 使用搜索索引
func WithIndexer(idx ArticleIndexer) ArticleOption {
	return func(s *ArticleService) { s.indexer = idx }
}

// WithViewDedupeWindow 同一访客在窗口内重复浏览只计一次
func WithViewDedupeWindow(d time.Duration) ArticleOption {
	return func(s *ArticleService) { s.viewWindow = d }
}

// NewArticleService 创建文章服务
func NewArticleService(articles repository.ArticleRepository, likes repository.LikeRepository, logger *zap.SugaredLogger, opts ...ArticleOption) *ArticleService {
	s := &ArticleService{
		articles: articles,
		likes:    likes,
		cache:    cache.NoopArticleCache{},
		indexer:  nopIndexer{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetArticle 获取文章详情，已发布文章浏览量+1；未发布文章仅作者可见
func (s *ArticleService) GetArticle(ctx context.Context, articleID uint, caller *auth.Identity, viewer string) (*dto.ArticleDetailResponse, error) {
	// 过滤器只含本进程已知ID，未命中时回源确认
	known := s.cache.MightExist(ctx, articleID)
	article, err := s.getArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if !known {
		s.cache.Remember(ctx, articleID)
	}
	if !article.Published && !isAuthor(article, caller) {
		return nil, ErrArticleNotFound
	}

	if article.Published && s.shouldCountView(ctx, articleID, viewer) {
		counted, err := s.articles.IncrementViews(ctx, articleID)
		if err != nil {
			return nil, fmt.Errorf("增加浏览量失败: %w", err)
		}
		if counted {
			metrics.ArticleViews.Inc()
		}
	}

	return s.detail(ctx, articleID)
}

// shouldCountView 去重窗口内的重复浏览不计数，缓存故障时照常计数
func (s *ArticleService) shouldCountView(ctx context.Context, articleID uint, viewer string) bool {
	if s.viewWindow <= 0 {
		return true
	}
	first, err := s.cache.MarkViewed(ctx, articleID, viewer, s.viewWindow)
	if err != nil {
		s.logger.Warnf("浏览去重失败，按新浏览计数: %v", err)
		return true
	}
	return first
}

// CreateArticle 创建文章
func (s *ArticleService) CreateArticle(ctx context.Context, caller *auth.Identity, req *dto.ArticleCreateRequest) (*dto.ArticleDetailResponse, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	categories := dto.ReplaceWith(req.Categories...)
	tags := dto.ReplaceWith(req.Tags...)
	if err := validateNames(categories, tags); err != nil {
		return nil, err
	}

	summary := req.Summary
	if summary == "" {
		summary = s.autoSummary(req.Content)
	}
	article := &model.Article{
		Title:     req.Title,
		Summary:   summary,
		Content:   req.Content,
		Published: req.Published,
		AuthorID:  caller.UserID,
	}
	if req.Published {
		now := time.Now()
		article.PublishedAt = &now
	}

	catNames, _ := categories.Names()
	tagNames, _ := tags.Names()
	if err := s.articles.Create(ctx, article, catNames, tagNames); err != nil {
		return nil, fmt.Errorf("创建文章失败: %w", err)
	}
	s.cache.Remember(ctx, article.ID)
	s.logger.Infof("用户 %d 创建文章 %d", caller.UserID, article.ID)

	resp, err := s.detail(ctx, article.ID)
	if err != nil {
		return nil, err
	}
	s.syncIndex(ctx, article.ID)
	return resp, nil
}

// UpdateArticle 更新文章，仅作者可操作
func (s *ArticleService) UpdateArticle(ctx context.Context, articleID uint, caller *auth.Identity, req *dto.ArticleUpdateRequest) (*dto.ArticleDetailResponse, error) {
	article, err := s.authorize(ctx, articleID, caller)
	if err != nil {
		return nil, err
	}
	if err := validateNames(req.Categories, req.Tags); err != nil {
		return nil, err
	}

	upd := repository.ArticleUpdate{Fields: map[string]interface{}{}}
	if req.Title != nil {
		upd.Fields["title"] = *req.Title
	}
	if req.Summary != nil {
		upd.Fields["summary"] = *req.Summary
	}
	if req.Content != nil {
		upd.Fields["content"] = *req.Content
	}
	if req.Published != nil && *req.Published != article.Published {
		upd.Fields["published"] = *req.Published
		if *req.Published {
			upd.Fields["published_at"] = time.Now()
		}
	}
	upd.Categories, upd.ReplaceCategories = req.Categories.Names()
	upd.Tags, upd.ReplaceTags = req.Tags.Names()

	if err := s.articles.Update(ctx, articleID, upd); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("更新文章失败: %w", err)
	}
	if err := s.cache.Invalidate(ctx, articleID); err != nil {
		s.logger.Warnf("清除文章 %d 缓存失败: %v", articleID, err)
	}

	resp, err := s.detail(ctx, articleID)
	if err != nil {
		return nil, err
	}
	s.syncIndex(ctx, articleID)
	return resp, nil
}

// DeleteArticle 删除文章，仅作者可操作
func (s *ArticleService) DeleteArticle(ctx context.Context, articleID uint, caller *auth.Identity) (*dto.SuccessResponse, error) {
	if _, err := s.authorize(ctx, articleID, caller); err != nil {
		return nil, err
	}
	if err := s.articles.Delete(ctx, articleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("删除文章失败: %w", err)
	}
	if err := s.cache.Invalidate(ctx, articleID); err != nil {
		s.logger.Warnf("清除文章 %d 缓存失败: %v", articleID, err)
	}
	if err := s.indexer.DeleteArticle(ctx, articleID); err != nil {
		s.logger.Warnf("删除文章 %d 索引失败: %v", articleID, err)
	}
	s.logger.Infof("用户 %d 删除文章 %d", caller.UserID, articleID)
	return &dto.SuccessResponse{Success: true}, nil
}

// ListArticles 已发布文章列表
func (s *ArticleService) ListArticles(ctx context.Context, query dto.ArticleListQuery, page pagination.Params) (*dto.ArticleListResponse, error) {
	filter := repository.ArticleFilter{Category: query.Category, Tag: query.Tag, AuthorID: query.AuthorID}
	articles, total, err := s.articles.ListPublished(ctx, filter, page.Offset(), page.Limit)
	if err != nil {
		return nil, fmt.Errorf("获取文章列表失败: %w", err)
	}
	items := make([]dto.ArticleListItem, 0, len(articles))
	for i := range articles {
		items = append(items, dto.NewArticleListItem(&articles[i]))
	}
	return &dto.ArticleListResponse{Data: items, Pagination: pagination.NewMeta(total, page)}, nil
}

// authorize 校验调用者是否为文章作者
func (s *ArticleService) authorize(ctx context.Context, articleID uint, caller *auth.Identity) (*model.Article, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	article, err := s.getArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if !isAuthor(article, caller) {
		return nil, ErrForbidden
	}
	return article, nil
}

func (s *ArticleService) getArticle(ctx context.Context, articleID uint) (*model.Article, error) {
	article, err := s.articles.GetByID(ctx, articleID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询文章失败: %w", err)
	}
	return article, nil
}

// detail 加载文章详情、点赞数和渲染后的正文
func (s *ArticleService) detail(ctx context.Context, articleID uint) (*dto.ArticleDetailResponse, error) {
	article, err := s.articles.GetDetail(ctx, articleID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询文章详情失败: %w", err)
	}
	likes, err := s.likes.Count(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("统计点赞失败: %w", err)
	}
	return dto.NewArticleDetailResponse(article, s.render(ctx, article), likes), nil
}

// render 渲染正文，缓存以更新时间为版本
func (s *ArticleService) render(ctx context.Context, article *model.Article) string {
	version := article.UpdatedAt.UnixNano()
	if html, err := s.cache.GetHTML(ctx, article.ID, version); err == nil {
		return html
	} else if !cache.IsMiss(err) {
		s.logger.Warnf("读取文章 %d 渲染缓存失败: %v", article.ID, err)
	}

	html := markdown.ToHTML(article.Content)
	if err := s.cache.SetHTML(ctx, article.ID, version, html); err != nil {
		s.logger.Warnf("写入文章 %d 渲染缓存失败: %v", article.ID, err)
	}
	return html
}

// syncIndex 已发布文章写入索引，未发布的从索引移除
func (s *ArticleService) syncIndex(ctx context.Context, articleID uint) {
	article, err := s.articles.GetDetail(ctx, articleID)
	if err != nil {
		s.logger.Warnf("同步文章 %d 索引时查询失败: %v", articleID, err)
		return
	}
	if article.Published {
		err = s.indexer.IndexArticle(ctx, article)
	} else {
		err = s.indexer.DeleteArticle(ctx, articleID)
	}
	if err != nil {
		s.logger.Warnf("同步文章 %d 索引失败: %v", articleID, err)
	}
}

func (s *ArticleService) autoSummary(content string) string {
	text, err := markdown.PlainText(markdown.ToHTML(content))
	if err != nil {
		s.logger.Warnf("生成摘要失败: %v", err)
		return ""
	}
	return markdown.Summarize(text, autoSummaryLength)
}

func isAuthor(article *model.Article, caller *auth.Identity) bool {
	return caller != nil && caller.UserID == article.AuthorID
}

// validateNames 校验分类和标签名称长度
func validateNames(patches ...dto.NameListPatch) error {
	for _, p := range patches {
		names, _ := p.Names()
		for _, n := range names {
			if utf8.RuneCountInString(n) > maxNameLength {
				return ErrInvalidName
			}
		}
	}
	return nil
}
