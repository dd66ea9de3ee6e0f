package gormrepo

import (
	"context"

	"github.com/zemenay/techpulse-api/internal/model"
	"github.com/zemenay/techpulse-api/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepo 评论仓储
type CommentRepo struct {
	db *gorm.DB
}

// NewCommentRepo 创建评论仓储
func NewCommentRepo(db *gorm.DB) *CommentRepo {
	return &CommentRepo{db: db}
}

var _ repository.CommentRepository = (*CommentRepo)(nil)

// Create 创建评论并加载作者
func (r *CommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(comment).Error; err != nil {
		return translate(err, "create comment")
	}
	if err := db.First(&comment.Author, comment.AuthorID).Error; err != nil {
		return translate(err, "load comment author")
	}
	return nil
}

// GetByID 查询评论
func (r *CommentRepo) GetByID(ctx context.Context, id uint) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, translate(err, "get comment")
	}
	return &comment, nil
}

type replyCount struct {
	ParentID uint
	Count    int64
}

// ListTopLevel 顶级评论分页
func (r *CommentRepo) ListTopLevel(ctx context.Context, articleID uint, offset, limit int) ([]model.Comment, error) {
	db := r.db.WithContext(ctx)
	comments := make([]model.Comment, 0, limit)
	err := db.Preload("Author").
		Where("article_id = ? AND parent_id IS NULL", articleID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, translate(err, "list comments")
	}
	if len(comments) == 0 {
		return comments, nil
	}

	ids := make([]uint, len(comments))
	for i := range comments {
		ids[i] = comments[i].ID
	}
	var counts []replyCount
	err = db.Model(&model.Comment{}).
		Select("parent_id, COUNT(*) AS count").
		Where("parent_id IN ?", ids).
		Group("parent_id").
		Scan(&counts).Error
	if err != nil {
		return nil, translate(err, "count replies")
	}
	byParent := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byParent[c.ParentID] = c.Count
	}
	for i := range comments {
		comments[i].ReplyCount = byParent[comments[i].ID]
	}
	return comments, nil
}

// CountTopLevel 顶级评论总数
func (r *CommentRepo) CountTopLevel(ctx context.Context, articleID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("article_id = ? AND parent_id IS NULL", articleID).
		Count(&total).Error
	if err != nil {
		return 0, translate(err, "count comments")
	}
	return total, nil
}

// DeleteWithReplies 删除评论及其回复
func (r *CommentRepo) DeleteWithReplies(ctx context.Context, id uint) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("parent_id = ?", id).Delete(&model.Comment{})
		if res.Error != nil {
			return res.Error
		}
		deleted += res.RowsAffected
		res = tx.Delete(&model.Comment{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		deleted += res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, translate(err, "delete comment")
	}
	return deleted, nil
}
