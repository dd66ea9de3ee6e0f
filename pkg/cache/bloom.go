package cache

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/redis/go-redis/v9"
)

// BloomFilter 布隆过滤器接口
type BloomFilter interface {
	// Add 添加元素到布隆过滤器
	Add(element string)

	// Test 测试元素是否可能存在
	Test(element string) bool

	// BatchAdd 批量添加元素
	BatchAdd(elements []string)

	// SaveToRedis 保存布隆过滤器到Redis
	SaveToRedis(ctx context.Context) error

	// LoadFromRedis 从Redis加载布隆过滤器
	LoadFromRedis(ctx context.Context) error
}

// RedisBloomFilter 内存布隆过滤器，以Redis做持久化
type RedisBloomFilter struct {
	filter    *bloom.BloomFilter
	redisKey  string
	client    redis.Cmdable
	mutex     sync.RWMutex
	capacity  uint    // 预期元素数量
	errorRate float64 // 误判率
}

// NewRedisBloomFilter 创建Redis布隆过滤器
func NewRedisBloomFilter(client redis.Cmdable, redisKey string, capacity uint, errorRate float64) *RedisBloomFilter {
	return &RedisBloomFilter{
		filter:    bloom.NewWithEstimates(capacity, errorRate),
		redisKey:  redisKey,
		client:    client,
		capacity:  capacity,
		errorRate: errorRate,
	}
}

// Add 添加元素到布隆过滤器
func (bf *RedisBloomFilter) Add(element string) {
	bf.mutex.Lock()
	defer bf.mutex.Unlock()
	bf.filter.AddString(element)
}

// Test 测试元素是否可能存在
func (bf *RedisBloomFilter) Test(element string) bool {
	bf.mutex.RLock()
	defer bf.mutex.RUnlock()
	return bf.filter.TestString(element)
}

// BatchAdd 批量添加元素
func (bf *RedisBloomFilter) BatchAdd(elements []string) {
	bf.mutex.Lock()
	defer bf.mutex.Unlock()
	for _, element := range elements {
		bf.filter.AddString(element)
	}
}

// SaveToRedis 保存布隆过滤器到Redis
func (bf *RedisBloomFilter) SaveToRedis(ctx context.Context) error {
	bf.mutex.RLock()
	data, err := bf.filter.GobEncode()
	bf.mutex.RUnlock()
	if err != nil {
		return fmt.Errorf("encode bloom filter failed: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	return bf.client.Set(ctx, bf.redisKey, encoded, BloomFilterExpiration).Err()
}

// LoadFromRedis 从Redis加载布隆过滤器，不存在时保留空过滤器
func (bf *RedisBloomFilter) LoadFromRedis(ctx context.Context) error {
	encoded, err := bf.client.Get(ctx, bf.redisKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("get bloom filter from redis failed: %w", err)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("decode bloom filter data failed: %w", err)
	}

	filter := &bloom.BloomFilter{}
	if err := filter.GobDecode(data); err != nil {
		return fmt.Errorf("decode bloom filter failed: %w", err)
	}

	bf.mutex.Lock()
	bf.filter = filter
	bf.mutex.Unlock()
	return nil
}
