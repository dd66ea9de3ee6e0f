// Package event 文章互动事件的发布与消费
package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type 事件类型，同时作为消息路由键
type Type string

const (
	// ArticleLiked 文章被点赞
	ArticleLiked Type = "article.liked"
	// ArticleCommented 文章收到评论或回复
	ArticleCommented Type = "article.commented"
)

// Event 互动事件
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	ArticleID  uint      `json:"articleId"`
	ActorID    uint      `json:"actorId"`
	CommentID  *uint     `json:"commentId,omitempty"`
	ParentID   *uint     `json:"parentId,omitempty"`
	Excerpt    string    `json:"excerpt,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// New 创建事件
func New(t Type, articleID, actorID uint) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		ArticleID:  articleID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher 事件发布者
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Handler 事件处理者
type Handler interface {
	HandleEvent(ctx context.Context, e Event) error
}

// HandlerFunc 函数形式的Handler
type HandlerFunc func(ctx context.Context, e Event) error

// HandleEvent 调用f
func (f HandlerFunc) HandleEvent(ctx context.Context, e Event) error {
	return f(ctx, e)
}

// InlinePublisher 未启用消息队列时在进程内直接处理事件
type InlinePublisher struct {
	handler Handler
}

// NewInlinePublisher 创建进程内发布者
func NewInlinePublisher(h Handler) *InlinePublisher {
	return &InlinePublisher{handler: h}
}

// Publish 同步调用处理者
func (p *InlinePublisher) Publish(ctx context.Context, e Event) error {
	return p.handler.HandleEvent(ctx, e)
}

// NopPublisher 丢弃所有事件
type NopPublisher struct{}

// Publish 不做任何事
func (NopPublisher) Publish(context.Context, Event) error { return nil }
