package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ArticleCache 文章相关缓存：存在性过滤、正文HTML、浏览去重
type ArticleCache interface {
	// MightExist 本进程是否已登记该文章，false只说明本进程未见过
	MightExist(ctx context.Context, articleID uint) bool
	// Remember 记录新文章ID
	Remember(ctx context.Context, articleID uint)
	// GetHTML 获取指定版本的渲染结果，未命中返回ErrMiss
	GetHTML(ctx context.Context, articleID uint, version int64) (string, error)
	// SetHTML 缓存渲染结果
	SetHTML(ctx context.Context, articleID uint, version int64, html string) error
	// Invalidate 删除文章缓存
	Invalidate(ctx context.Context, articleID uint) error
	// MarkViewed 在窗口内首次浏览返回true
	MarkViewed(ctx context.Context, articleID uint, viewer string, window time.Duration) (bool, error)
}

type cachedHTML struct {
	Version int64  `json:"version"`
	HTML    string `json:"html"`
}

// ArticleCacheService 基于Cache和布隆过滤器的文章缓存
type ArticleCacheService struct {
	cache       Cache
	bloomFilter BloomFilter
}

// NewArticleCacheService 创建文章缓存服务
func NewArticleCacheService(cache Cache, bloomFilter BloomFilter) *ArticleCacheService {
	return &ArticleCacheService{
		cache:       cache,
		bloomFilter: bloomFilter,
	}
}

func articleKey(articleID uint) string {
	return strconv.FormatUint(uint64(articleID), 10)
}

// MightExist 通过布隆过滤器判断文章是否可能存在
func (a *ArticleCacheService) MightExist(_ context.Context, articleID uint) bool {
	return a.bloomFilter.Test(articleKey(articleID))
}

// Remember 将文章ID加入布隆过滤器
func (a *ArticleCacheService) Remember(_ context.Context, articleID uint) {
	a.bloomFilter.Add(articleKey(articleID))
}

// GetHTML 获取文章正文HTML缓存，版本不一致视为未命中
func (a *ArticleCacheService) GetHTML(ctx context.Context, articleID uint, version int64) (string, error) {
	var v cachedHTML
	if err := a.cache.GetJSON(ctx, fmt.Sprintf(ArticleHTMLKey, articleID), &v); err != nil {
		return "", err
	}
	if v.Version != version {
		return "", ErrMiss
	}
	return v.HTML, nil
}

// SetHTML 设置文章正文HTML缓存
func (a *ArticleCacheService) SetHTML(ctx context.Context, articleID uint, version int64, html string) error {
	return a.cache.SetJSON(ctx, fmt.Sprintf(ArticleHTMLKey, articleID), cachedHTML{Version: version, HTML: html}, ArticleHTMLExpiration)
}

// Invalidate 删除文章正文缓存
func (a *ArticleCacheService) Invalidate(ctx context.Context, articleID uint) error {
	return a.cache.Delete(ctx, fmt.Sprintf(ArticleHTMLKey, articleID))
}

// MarkViewed 使用SetNX标记访客浏览，window<=0时总是返回true
func (a *ArticleCacheService) MarkViewed(ctx context.Context, articleID uint, viewer string, window time.Duration) (bool, error) {
	if window <= 0 || viewer == "" {
		return true, nil
	}
	return a.cache.SetNX(ctx, fmt.Sprintf(ArticleViewKey, articleID, viewer), 1, window)
}

// NoopArticleCache 未启用Redis时使用：不缓存，不过滤，每次浏览都计数
type NoopArticleCache struct{}

func (NoopArticleCache) MightExist(context.Context, uint) bool { return true }
func (NoopArticleCache) Remember(context.Context, uint)        {}
func (NoopArticleCache) GetHTML(context.Context, uint, int64) (string, error) {
	return "", ErrMiss
}
func (NoopArticleCache) SetHTML(context.Context, uint, int64, string) error { return nil }
func (NoopArticleCache) Invalidate(context.Context, uint) error             { return nil }
func (NoopArticleCache) MarkViewed(context.Context, uint, string, time.Duration) (bool, error) {
	return true, nil
}

// IsMiss 是否为缓存未命中
func IsMiss(err error) bool {
	return errors.Is(err, ErrMiss)
}
