package gormrepo

import (
	"context"

	"github.com/zemenay/techpulse-api/internal/model"
	"github.com/zemenay/techpulse-api/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArticleRepo 文章仓储
type ArticleRepo struct {
	db *gorm.DB
}

// NewArticleRepo 创建文章仓储
func NewArticleRepo(db *gorm.DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

var _ repository.ArticleRepository = (*ArticleRepo)(nil)

// Create 创建文章
func (r *ArticleRepo) Create(ctx context.Context, article *model.Article, categories, tags []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(article).Error; err != nil {
			return err
		}
		cats, err := connectCategories(tx, categories)
		if err != nil {
			return err
		}
		if len(cats) > 0 {
			if err := tx.Model(article).Association("Categories").Replace(cats); err != nil {
				return err
			}
		}
		tagList, err := connectTags(tx, tags)
		if err != nil {
			return err
		}
		if len(tagList) > 0 {
			if err := tx.Model(article).Association("Tags").Replace(tagList); err != nil {
				return err
			}
		}
		return nil
	})
	return translate(err, "create article")
}

// GetByID 查询文章
func (r *ArticleRepo) GetByID(ctx context.Context, id uint) (*model.Article, error) {
	var article model.Article
	if err := r.db.WithContext(ctx).First(&article, id).Error; err != nil {
		return nil, translate(err, "get article")
	}
	return &article, nil
}

// GetDetail 查询文章详情，顶级评论倒序，回复正序
func (r *ArticleRepo) GetDetail(ctx context.Context, id uint) (*model.Article, error) {
	var article model.Article
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Where("parent_id IS NULL").Order("created_at DESC, id DESC")
		}).
		Preload("Comments.Author").
		Preload("Comments.Replies", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("Comments.Replies.Author").
		First(&article, id).Error
	if err != nil {
		return nil, translate(err, "get article detail")
	}
	return &article, nil
}

// Update 更新文章字段和关联
func (r *ArticleRepo) Update(ctx context.Context, id uint, upd repository.ArticleUpdate) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		article := &model.Article{Base: model.Base{ID: id}}
		if len(upd.Fields) > 0 {
			if err := tx.Model(article).Updates(upd.Fields).Error; err != nil {
				return err
			}
		}
		if upd.ReplaceCategories {
			cats, err := connectCategories(tx, upd.Categories)
			if err != nil {
				return err
			}
			if err := replaceAssociation(tx, article, "Categories", cats, len(cats)); err != nil {
				return err
			}
		}
		if upd.ReplaceTags {
			tags, err := connectTags(tx, upd.Tags)
			if err != nil {
				return err
			}
			if err := replaceAssociation(tx, article, "Tags", tags, len(tags)); err != nil {
				return err
			}
		}
		return nil
	})
	return translate(err, "update article")
}

// Delete 删除文章及其评论、点赞和关联
func (r *ArticleRepo) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ? AND parent_id IS NOT NULL", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", id).Delete(&model.ArticleLike{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM article_categories WHERE article_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM article_tags WHERE article_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Article{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate(err, "delete article")
}

// IncrementViews 已发布文章浏览量+1
func (r *ArticleRepo) IncrementViews(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Article{}).
		Where("id = ? AND published = ?", id, true).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return false, translate(res.Error, "increment views")
	}
	return res.RowsAffected > 0, nil
}

// ListPublished 已发布文章列表，按发布时间倒序
func (r *ArticleRepo) ListPublished(ctx context.Context, filter repository.ArticleFilter, offset, limit int) ([]model.Article, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Article{}).Where("articles.published = ?", true)
	if filter.AuthorID != 0 {
		query = query.Where("articles.author_id = ?", filter.AuthorID)
	}
	if filter.Category != "" {
		query = query.Where("articles.id IN (?)", r.db.Table("article_categories").
			Select("article_categories.article_id").
			Joins("JOIN categories ON categories.id = article_categories.category_id").
			Where("categories.name = ?", filter.Category))
	}
	if filter.Tag != "" {
		query = query.Where("articles.id IN (?)", r.db.Table("article_tags").
			Select("article_tags.article_id").
			Joins("JOIN tags ON tags.id = article_tags.tag_id").
			Where("tags.name = ?", filter.Tag))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count articles")
	}

	var articles []model.Article
	err := query.
		Preload("Author").
		Preload("Categories").
		Preload("Tags").
		Order("articles.published_at DESC, articles.id DESC").
		Offset(offset).Limit(limit).
		Find(&articles).Error
	if err != nil {
		return nil, 0, translate(err, "list articles")
	}
	return articles, total, nil
}

// ListIDs 全部文章ID
func (r *ArticleRepo) ListIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&model.Article{}).Pluck("id", &ids).Error; err != nil {
		return nil, translate(err, "list article ids")
	}
	return ids, nil
}

// ListForIndex 分批读取已发布文章
func (r *ArticleRepo) ListForIndex(ctx context.Context, afterID uint, batch int) ([]model.Article, error) {
	var articles []model.Article
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Categories").
		Preload("Tags").
		Where("id > ? AND published = ?", afterID, true).
		Order("id ASC").
		Limit(batch).
		Find(&articles).Error
	if err != nil {
		return nil, translate(err, "list articles for index")
	}
	return articles, nil
}

func replaceAssociation(tx *gorm.DB, article *model.Article, name string, values interface{}, n int) error {
	assoc := tx.Model(article).Association(name)
	if n == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(values)
}

// connectCategories 按名称查找分类，不存在则创建
func connectCategories(tx *gorm.DB, names []string) ([]model.Category, error) {
	if len(names) == 0 {
		return nil, nil
	}
	rows := make([]model.Category, len(names))
	for i, n := range names {
		rows[i] = model.Category{Name: n}
	}
	if err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).Create(&rows).Error; err != nil {
		return nil, err
	}
	var cats []model.Category
	if err := tx.Where("name IN ?", names).Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

// connectTags 按名称查找标签，不存在则创建
func connectTags(tx *gorm.DB, names []string) ([]model.Tag, error) {
	if len(names) == 0 {
		return nil, nil
	}
	rows := make([]model.Tag, len(names))
	for i, n := range names {
		rows[i] = model.Tag{Name: n}
	}
	if err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).Create(&rows).Error; err != nil {
		return nil, err
	}
	var tags []model.Tag
	if err := tx.Where("name IN ?", names).Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}
