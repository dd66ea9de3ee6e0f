package database

import (
	"fmt"
	"time"

	"github.com/avast/retry-go"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/zemenay/techpulse-api/internal/config"
	"github.com/zemenay/techpulse-api/internal/logger"
	"go.uber.org/zap"
)

// RabbitMQ 消息队列连接与通道
type RabbitMQ struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel
}

// InitRabbitMQ 连接RabbitMQ并声明交换机和队列
func InitRabbitMQ(cfg *config.RabbitMQConfig) (*RabbitMQ, error) {
	var conn *amqp.Connection
	err := retry.Do(
		func() error {
			var dialErr error
			conn, dialErr = amqp.Dial(cfg.URL)
			return dialErr
		},
		retry.Attempts(5),
		retry.Delay(time.Second),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("RabbitMQ连接失败，重试中", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("打开RabbitMQ通道失败: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("声明交换机失败: %w", err)
	}
	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("声明队列失败: %w", err)
	}
	// 订阅全部文章互动事件
	if err := ch.QueueBind(cfg.Queue, "article.#", cfg.Exchange, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("绑定队列失败: %w", err)
	}

	logger.Info("RabbitMQ初始化成功", zap.String("exchange", cfg.Exchange), zap.String("queue", cfg.Queue))
	return &RabbitMQ{Conn: conn, Channel: ch}, nil
}

// Close 关闭通道和连接
func (r *RabbitMQ) Close() error {
	if r == nil {
		return nil
	}
	if err := r.Channel.Close(); err != nil {
		logger.Warn("关闭RabbitMQ通道失败", zap.Error(err))
	}
	return r.Conn.Close()
}
