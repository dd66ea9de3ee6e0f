package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/zemenay/techpulse-api/internal/dto"
	"github.com/zemenay/techpulse-api/internal/event"
	"github.com/zemenay/techpulse-api/internal/model"
	"github.com/zemenay/techpulse-api/internal/repository"
	"github.com/zemenay/techpulse-api/pkg/auth"
	"github.com/zemenay/techpulse-api/pkg/pagination"
	"go.uber.org/zap"
)

// NotificationService 通知服务，消费互动事件生成站内通知
type NotificationService struct {
	notifications repository.NotificationRepository
	articles      repository.ArticleRepository
	comments      repository.CommentRepository
	users         repository.UserRepository
	logger        *zap.SugaredLogger
}

// NewNotificationService 创建通知服务
func NewNotificationService(
	notifications repository.NotificationRepository,
	articles repository.ArticleRepository,
	comments repository.CommentRepository,
	users repository.UserRepository,
	logger *zap.SugaredLogger,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		articles:      articles,
		comments:      comments,
		users:         users,
		logger:        logger,
	}
}

var _ event.Handler = (*NotificationService)(nil)

// HandleEvent 处理互动事件，不给操作者本人发送通知
// 事件涉及的文章或评论已被删除时丢弃该事件
func (s *NotificationService) HandleEvent(ctx context.Context, e event.Event) error {
	article, err := s.articles.GetByID(ctx, e.ArticleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Debugf("文章 %d 已删除，丢弃事件 %s", e.ArticleID, e.ID)
			return nil
		}
		return fmt.Errorf("查询文章失败: %w", err)
	}

	actorName := "Someone"
	if actor, err := s.users.GetByID(ctx, e.ActorID); err == nil {
		actorName = actor.Name
	}

	n := &model.Notification{
		ActorID:   e.ActorID,
		ArticleID: e.ArticleID,
		CommentID: e.CommentID,
	}

	switch e.Type {
	case event.ArticleLiked:
		n.UserID = article.AuthorID
		n.Type = model.NotificationArticleLike
		n.Content = fmt.Sprintf("%s liked your article %q", actorName, article.Title)
	case event.ArticleCommented:
		n.UserID = article.AuthorID
		n.Type = model.NotificationComment
		n.Content = fmt.Sprintf("%s commented on %q: %s", actorName, article.Title, e.Excerpt)
		if e.ParentID != nil {
			parent, err := s.comments.GetByID(ctx, *e.ParentID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil
				}
				return fmt.Errorf("查询父评论失败: %w", err)
			}
			n.UserID = parent.AuthorID
			n.Type = model.NotificationReply
			n.Content = fmt.Sprintf("%s replied to your comment: %s", actorName, e.Excerpt)
		}
	default:
		s.logger.Warnf("未知事件类型: %s", e.Type)
		return nil
	}

	if n.UserID == e.ActorID {
		return nil
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("创建通知失败: %w", err)
	}
	return nil
}

// List 当前用户的通知列表，最新的在前
func (s *NotificationService) List(ctx context.Context, caller *auth.Identity, page pagination.Params) (*dto.NotificationListResponse, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	list, total, err := s.notifications.List(ctx, caller.UserID, page.Offset(), page.Limit)
	if err != nil {
		return nil, fmt.Errorf("查询通知失败: %w", err)
	}
	unread, err := s.notifications.CountUnread(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("统计未读通知失败: %w", err)
	}

	data := make([]dto.NotificationResponse, 0, len(list))
	for i := range list {
		data = append(data, dto.NewNotificationResponse(&list[i]))
	}
	return &dto.NotificationListResponse{
		Data:        data,
		Pagination:  pagination.NewMeta(total, page),
		UnreadCount: unread,
	}, nil
}

// MarkRead 标记通知为已读
func (s *NotificationService) MarkRead(ctx context.Context, id uint, caller *auth.Identity) (*dto.SuccessResponse, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	if err := s.notifications.MarkRead(ctx, id, caller.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("标记通知失败: %w", err)
	}
	return &dto.SuccessResponse{Success: true}, nil
}
