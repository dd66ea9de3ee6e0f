package auth

import (
	"context"
	"sync"
	"time"
)

// Blacklist 令牌黑名单，按令牌ID(jti)记录已撤销的令牌
type Blacklist interface {
	// Add 将令牌加入黑名单，直到expireAt
	Add(ctx context.Context, tokenID string, expireAt time.Time) error
	// Contains 检查令牌是否已被撤销
	Contains(ctx context.Context, tokenID string) (bool, error)
}

// MemoryBlacklist 内存黑名单，适用于单实例部署
type MemoryBlacklist struct {
	tokens map[string]time.Time
	mutex  sync.RWMutex
	now    func() time.Time
}

// NewMemoryBlacklist 创建内存黑名单
func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{
		tokens: make(map[string]time.Time),
		now:    time.Now,
	}
}

// Add 将令牌添加到黑名单
func (b *MemoryBlacklist) Add(_ context.Context, tokenID string, expireAt time.Time) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	now := b.now()
	if !expireAt.After(now) {
		return nil
	}
	// 顺带清理过期令牌
	for id, exp := range b.tokens {
		if now.After(exp) {
			delete(b.tokens, id)
		}
	}
	b.tokens[tokenID] = expireAt
	return nil
}

// Contains 检查令牌是否在黑名单中
func (b *MemoryBlacklist) Contains(_ context.Context, tokenID string) (bool, error) {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	exp, ok := b.tokens[tokenID]
	return ok && b.now().Before(exp), nil
}

// Len 黑名单中的令牌数
func (b *MemoryBlacklist) Len() int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return len(b.tokens)
}
