package dto

import (
	"time"

	"github.com/zemenay/techpulse-api/internal/model"
	"github.com/zemenay/techpulse-api/pkg/pagination"
)

// NotificationResponse 通知响应
type NotificationResponse struct {
	ID        uint          `json:"id"`
	Type      string        `json:"type"`
	Content   string        `json:"content"`
	ArticleID uint          `json:"articleId"`
	CommentID *uint         `json:"commentId"`
	IsRead    bool          `json:"isRead"`
	CreatedAt time.Time     `json:"createdAt"`
	Actor     AuthorSummary `json:"actor"`
}

// NewNotificationResponse 构建通知响应
func NewNotificationResponse(n *model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Content:   n.Content,
		ArticleID: n.ArticleID,
		CommentID: n.CommentID,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
		Actor:     NewAuthorSummary(&n.Actor),
	}
}

// NotificationListResponse 通知列表响应
type NotificationListResponse struct {
	Data        []NotificationResponse `json:"data"`
	Pagination  pagination.Meta        `json:"pagination"`
	UnreadCount int64                  `json:"unreadCount"`
}
