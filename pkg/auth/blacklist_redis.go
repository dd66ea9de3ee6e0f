package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis键前缀
	blacklistKeyPrefix = "jwt:blacklist:"
	// 本地缓存最大条目数
	maxLocalCacheSize = 10000
)

// RedisBlacklist Redis令牌黑名单，带本地缓存
type RedisBlacklist struct {
	redis      redis.Cmdable
	localCache map[string]time.Time
	mutex      sync.RWMutex
}

// NewRedisBlacklist 创建Redis令牌黑名单
func NewRedisBlacklist(client redis.Cmdable) *RedisBlacklist {
	return &RedisBlacklist{
		redis:      client,
		localCache: make(map[string]time.Time),
	}
}

// Add 将令牌添加到黑名单
func (b *RedisBlacklist) Add(ctx context.Context, tokenID string, expireAt time.Time) error {
	ttl := time.Until(expireAt)
	if ttl <= 0 {
		return nil
	}

	if err := b.redis.Set(ctx, blacklistKeyPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("添加令牌到黑名单失败: %w", err)
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()
	if len(b.localCache) >= maxLocalCacheSize {
		now := time.Now()
		for id, exp := range b.localCache {
			if now.After(exp) {
				delete(b.localCache, id)
			}
		}
	}
	b.localCache[tokenID] = expireAt
	return nil
}

// Contains 检查令牌是否在黑名单中，先查本地缓存再查Redis
func (b *RedisBlacklist) Contains(ctx context.Context, tokenID string) (bool, error) {
	b.mutex.RLock()
	exp, ok := b.localCache[tokenID]
	b.mutex.RUnlock()
	if ok && time.Now().Before(exp) {
		return true, nil
	}

	n, err := b.redis.Exists(ctx, blacklistKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("检查Redis黑名单失败: %w", err)
	}
	return n > 0, nil
}
