package gormrepo

import (
	"context"

	"github.com/zemenay/techpulse-api/internal/model"
	"github.com/zemenay/techpulse-api/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepo 点赞仓储
type LikeRepo struct {
	db *gorm.DB
}

// NewLikeRepo 创建点赞仓储
func NewLikeRepo(db *gorm.DB) *LikeRepo {
	return &LikeRepo{db: db}
}

var _ repository.LikeRepository = (*LikeRepo)(nil)

// Toggle 先尝试删除，未删除任何行则插入；唯一索引保证并发下每人最多一条
func (r *LikeRepo) Toggle(ctx context.Context, articleID, userID uint) (bool, error) {
	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("article_id = ? AND user_id = ?", articleID, userID).Delete(&model.ArticleLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			liked = false
			return nil
		}
		like := &model.ArticleLike{ArticleID: articleID, UserID: userID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error; err != nil {
			return err
		}
		liked = true
		return nil
	})
	if err != nil {
		return false, translate(err, "toggle like")
	}
	return liked, nil
}

// Count 文章点赞数
func (r *LikeRepo) Count(ctx context.Context, articleID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ArticleLike{}).Where("article_id = ?", articleID).Count(&count).Error
	if err != nil {
		return 0, translate(err, "count likes")
	}
	return count, nil
}

// Exists 用户是否已点赞
func (r *LikeRepo) Exists(ctx context.Context, articleID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ArticleLike{}).
		Where("article_id = ? AND user_id = ?", articleID, userID).
		Count(&count).Error
	if err != nil {
		return false, translate(err, "check like")
	}
	return count > 0, nil
}
