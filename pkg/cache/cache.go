package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss 缓存未命中
var ErrMiss = errors.New("cache miss")

// Cache 缓存接口
type Cache interface {
	// Get 获取缓存，未命中返回ErrMiss
	Get(ctx context.Context, key string) (string, error)

	// Set 设置缓存
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error

	// SetNX 设置缓存（不存在时才设置）
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)

	// Delete 删除缓存
	Delete(ctx context.Context, keys ...string) error

	// GetJSON 获取JSON格式的缓存并反序列化
	GetJSON(ctx context.Context, key string, dest interface{}) error

	// SetJSON 序列化为JSON并设置缓存
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error

	// Close 关闭连接
	Close() error
}

// 缓存键
const (
	ArticleHTMLKey        = "article:html:%d"    // 渲染后的文章正文
	ArticleViewKey        = "article:view:%d:%s" // 访客浏览去重标记
	BloomFilterArticleKey = "bloom:article:exists"
)

// 过期时间
const (
	ArticleHTMLExpiration = 30 * time.Minute
	BloomFilterExpiration = 24 * time.Hour
)
