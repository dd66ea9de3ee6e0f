package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/zemenay/techpulse-api/internal/dto"
	"github.com/zemenay/techpulse-api/internal/event"
	"github.com/zemenay/techpulse-api/internal/metrics"
	"github.com/zemenay/techpulse-api/internal/model"
	"github.com/zemenay/techpulse-api/internal/repository"
	"github.com/zemenay/techpulse-api/pkg/auth"
	"github.com/zemenay/techpulse-api/pkg/pagination"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// InteractionService 文章互动服务：点赞与评论
type InteractionService struct {
	articles  repository.ArticleRepository
	comments  repository.CommentRepository
	likes     repository.LikeRepository
	filter    *ContentFilter
	publisher event.Publisher
	logger    *zap.SugaredLogger
}

// NewInteractionService 创建文章互动服务
func NewInteractionService(
	articles repository.ArticleRepository,
	comments repository.CommentRepository,
	likes repository.LikeRepository,
	filter *ContentFilter,
	publisher event.Publisher,
	logger *zap.SugaredLogger,
) *InteractionService {
	if filter == nil {
		filter = NewContentFilter(nil)
	}
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &InteractionService{
		articles:  articles,
		comments:  comments,
		likes:     likes,
		filter:    filter,
		publisher: publisher,
		logger:    logger,
	}
}

// GetInteractions 获取文章点赞汇总和顶级评论分页；未发布文章仅作者可见
func (s *InteractionService) GetInteractions(ctx context.Context, articleID uint, page pagination.Params, caller *auth.Identity) (*dto.InteractionResponse, error) {
	if _, err := s.visibleArticle(ctx, articleID, caller); err != nil {
		return nil, err
	}

	var (
		comments  []model.Comment
		total     int64
		likeCount int64
		userLiked bool
	)

	// 四个查询互不依赖，并发执行，任一失败则整体失败
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.comments.ListTopLevel(gctx, articleID, page.Offset(), page.Limit)
		comments = list
		return err
	})
	g.Go(func() error {
		n, err := s.comments.CountTopLevel(gctx, articleID)
		total = n
		return err
	})
	g.Go(func() error {
		n, err := s.likes.Count(gctx, articleID)
		likeCount = n
		return err
	})
	if caller != nil {
		g.Go(func() error {
			ok, err := s.likes.Exists(gctx, articleID, caller.UserID)
			userLiked = ok
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("获取文章互动信息失败: %w", err)
	}

	return &dto.InteractionResponse{
		Likes: dto.LikeSummary{Count: likeCount, UserLiked: userLiked},
		Comments: dto.CommentPage{
			Data:       dto.NewCommentResponses(comments),
			Pagination: pagination.NewMeta(total, page),
		},
	}, nil
}

// ToggleLike 切换点赞状态；未发布文章仅作者可见
func (s *InteractionService) ToggleLike(ctx context.Context, articleID uint, caller *auth.Identity) (*dto.ToggleLikeResponse, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	article, err := s.visibleArticle(ctx, articleID, caller)
	if err != nil {
		return nil, err
	}

	liked, err := s.likes.Toggle(ctx, articleID, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("切换点赞失败: %w", err)
	}

	if liked {
		metrics.LikesToggled.WithLabelValues("liked").Inc()
		if article.AuthorID != caller.UserID {
			s.publish(ctx, event.New(event.ArticleLiked, articleID, caller.UserID))
		}
	} else {
		metrics.LikesToggled.WithLabelValues("unliked").Inc()
	}
	return &dto.ToggleLikeResponse{Liked: liked}, nil
}

// PostComment 发表评论或回复，回复的回复挂到顶级评论下
func (s *InteractionService) PostComment(ctx context.Context, articleID uint, caller *auth.Identity, content string, parentID *uint) (*dto.CommentResponse, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	article, err := s.getArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if !article.Published {
		return nil, ErrArticleUnpublished
	}

	cleaned, err := s.filter.Clean(content)
	if err != nil {
		return nil, err
	}

	var parent *model.Comment
	if parentID != nil {
		parent, err = s.comments.GetByID(ctx, *parentID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidParent
		}
		if err != nil {
			return nil, fmt.Errorf("查询父评论失败: %w", err)
		}
		if parent.ArticleID != articleID {
			return nil, ErrInvalidParent
		}
		if !parent.IsTopLevel() {
			parentID = parent.ParentID
		}
	}

	comment := &model.Comment{
		Content:   cleaned,
		ArticleID: articleID,
		AuthorID:  caller.UserID,
		ParentID:  parentID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("创建评论失败: %w", err)
	}

	kind := "comment"
	if parentID != nil {
		kind = "reply"
	}
	metrics.CommentsPosted.WithLabelValues(kind).Inc()

	e := event.New(event.ArticleCommented, articleID, caller.UserID)
	e.CommentID = &comment.ID
	e.ParentID = parentID
	e.Excerpt = excerpt(cleaned, 80)
	s.publish(ctx, e)

	resp := dto.NewCommentResponse(comment)
	return &resp, nil
}

// DeleteComment 删除评论及其回复，仅作者或管理员可删除
func (s *InteractionService) DeleteComment(ctx context.Context, articleID, commentID uint, caller *auth.Identity) (*dto.SuccessResponse, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	comment, err := s.comments.GetByID(ctx, commentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询评论失败: %w", err)
	}
	if comment.ArticleID != articleID {
		return nil, ErrCommentNotFound
	}
	if comment.AuthorID != caller.UserID && !caller.IsAdmin() {
		return nil, ErrForbidden
	}

	deleted, err := s.comments.DeleteWithReplies(ctx, commentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("删除评论失败: %w", err)
	}
	metrics.CommentsDeleted.Add(float64(deleted))
	s.logger.Infof("用户 %d 删除评论 %d，共删除 %d 条", caller.UserID, commentID, deleted)

	return &dto.SuccessResponse{Success: true}, nil
}

func (s *InteractionService) getArticle(ctx context.Context, articleID uint) (*model.Article, error) {
	article, err := s.articles.GetByID(ctx, articleID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询文章失败: %w", err)
	}
	return article, nil
}

// visibleArticle 查询文章，未发布文章对非作者按不存在处理
func (s *InteractionService) visibleArticle(ctx context.Context, articleID uint, caller *auth.Identity) (*model.Article, error) {
	article, err := s.getArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if !article.Published && !isAuthor(article, caller) {
		return nil, ErrArticleNotFound
	}
	return article, nil
}

// publish 发布失败只记录日志，不影响请求结果
func (s *InteractionService) publish(ctx context.Context, e event.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		metrics.EventsPublished.WithLabelValues(string(e.Type), "error").Inc()
		s.logger.Warnf("发布事件 %s 失败: %v", e.Type, err)
		return
	}
	metrics.EventsPublished.WithLabelValues(string(e.Type), "ok").Inc()
}

// excerpt 截取前n个字符
func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
