package event

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Channel 发布与消费所需的AMQP通道方法
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// AMQPPublisher 通过RabbitMQ交换机发布事件，路由键为事件类型
type AMQPPublisher struct {
	ch       Channel
	exchange string
}

// NewAMQPPublisher 创建RabbitMQ发布者
func NewAMQPPublisher(ch Channel, exchange string) *AMQPPublisher {
	return &AMQPPublisher{ch: ch, exchange: exchange}
}

// Publish 发布持久化消息
func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}
	err = p.ch.PublishWithContext(ctx, p.exchange, string(e.Type), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    e.ID,
		Timestamp:    e.OccurredAt,
		Type:         string(e.Type),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("发布事件失败: %w", err)
	}
	return nil
}

// Consumer 从队列消费事件并交给处理者
type Consumer struct {
	ch       Channel
	queue    string
	prefetch int
	handler  Handler
	logger   *zap.SugaredLogger
}

// NewConsumer 创建消费者
func NewConsumer(ch Channel, queue string, prefetch int, h Handler, logger *zap.SugaredLogger) *Consumer {
	return &Consumer{ch: ch, queue: queue, prefetch: prefetch, handler: h, logger: logger}
}

// Run 持续消费直到ctx取消或通道关闭
func (c *Consumer) Run(ctx context.Context) error {
	if c.prefetch > 0 {
		if err := c.ch.Qos(c.prefetch, 0, false); err != nil {
			return fmt.Errorf("设置预取数量失败: %w", err)
		}
	}
	deliveries, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("订阅队列失败: %w", err)
	}

	c.logger.Infof("开始消费队列 %s", c.queue)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("队列 %s 的投递通道已关闭", c.queue)
			}
			c.handle(ctx, d)
		}
	}
}

// handle 解析失败直接丢弃，处理失败首次重新入队
func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var e Event
	if err := json.Unmarshal(d.Body, &e); err != nil {
		c.logger.Warnf("丢弃无法解析的消息 %s: %v", d.MessageId, err)
		_ = d.Nack(false, false)
		return
	}
	if err := c.handler.HandleEvent(ctx, e); err != nil {
		c.logger.Errorf("处理事件 %s 失败: %v", e.ID, err)
		_ = d.Nack(false, !d.Redelivered)
		return
	}
	_ = d.Ack(false)
}
