package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/zemenay/techpulse-api/internal/config"
	"github.com/zemenay/techpulse-api/internal/logger"
	"go.uber.org/zap"
)

// InitRedis 初始化Redis连接
func InitRedis(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接redis失败: %w", err)
	}

	logger.Info("redis连接成功", zap.String("addr", cfg.Addr()))
	return client, nil
}
