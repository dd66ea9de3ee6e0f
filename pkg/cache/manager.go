package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Manager 缓存管理器
type Manager struct {
	cache         Cache
	articleFilter *RedisBloomFilter
	articleCache  *ArticleCacheService
	mutex         sync.RWMutex
	initialized   bool
}

// NewManager 创建缓存管理器
func NewManager() *Manager {
	return &Manager{}
}

// Initialize 初始化缓存与布隆过滤器
func (m *Manager) Initialize(ctx context.Context, client *redis.Client) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.initialized {
		return nil
	}

	m.cache = NewRedisCache(client)
	// 100万文章，1%误判率
	m.articleFilter = NewRedisBloomFilter(client, BloomFilterArticleKey, 1000000, 0.01)
	if err := m.articleFilter.LoadFromRedis(ctx); err != nil {
		return fmt.Errorf("load article bloom filter failed: %w", err)
	}
	m.articleCache = NewArticleCacheService(m.cache, m.articleFilter)
	m.initialized = true
	return nil
}

// ArticleCache 获取文章缓存服务
func (m *Manager) ArticleCache() *ArticleCacheService {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.articleCache
}

// WarmUp 使用全部文章ID预热布隆过滤器
func (m *Manager) WarmUp(articleIDs []uint) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if !m.initialized || len(articleIDs) == 0 {
		return
	}

	elements := make([]string, len(articleIDs))
	for i, id := range articleIDs {
		elements[i] = strconv.FormatUint(uint64(id), 10)
	}
	m.articleFilter.BatchAdd(elements)
}

// SaveBloomFilters 保存布隆过滤器到Redis
func (m *Manager) SaveBloomFilters(ctx context.Context) error {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if !m.initialized {
		return fmt.Errorf("cache manager not initialized")
	}
	return m.articleFilter.SaveToRedis(ctx)
}

// Close 保存布隆过滤器并关闭连接
func (m *Manager) Close(ctx context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.initialized {
		return nil
	}
	saveErr := m.articleFilter.SaveToRedis(ctx)
	if err := m.cache.Close(); err != nil {
		return fmt.Errorf("close cache failed: %w", err)
	}
	m.initialized = false
	return saveErr
}
