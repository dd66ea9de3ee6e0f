// Package repository 定义数据访问接口，实现位于 gormrepo，内存实现位于 repotest
package repository

import (
	"context"
	"errors"

	"github.com/zemenay/techpulse-api/internal/model"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate 违反唯一约束
	ErrDuplicate = errors.New("duplicate record")
)

// ArticleFilter 文章列表过滤条件
type ArticleFilter struct {
	Category string
	Tag      string
	AuthorID uint
}

// ArticleUpdate 文章更新内容，Replace*为false时不修改对应关联
type ArticleUpdate struct {
	Fields            map[string]interface{}
	ReplaceCategories bool
	Categories        []string
	ReplaceTags       bool
	Tags              []string
}

// NamedCount 分类/标签及其文章数
type NamedCount struct {
	ID           uint
	Name         string
	ArticleCount int64
}

// ArticleRepository 文章数据访问
type ArticleRepository interface {
	// Create 创建文章并按名称关联分类和标签，不存在的名称会被创建
	Create(ctx context.Context, article *model.Article, categories, tags []string) error
	// GetByID 只查询文章本身
	GetByID(ctx context.Context, id uint) (*model.Article, error)
	// GetDetail 查询文章及作者、分类、标签和两级评论树
	GetDetail(ctx context.Context, id uint) (*model.Article, error)
	// Update 在同一事务中更新字段和关联
	Update(ctx context.Context, id uint, upd ArticleUpdate) error
	// Delete 删除文章及其评论、点赞和关联
	Delete(ctx context.Context, id uint) error
	// IncrementViews 已发布文章浏览量+1，返回是否计数
	IncrementViews(ctx context.Context, id uint) (bool, error)
	ListPublished(ctx context.Context, filter ArticleFilter, offset, limit int) ([]model.Article, int64, error)
	// ListIDs 全部文章ID，用于预热布隆过滤器
	ListIDs(ctx context.Context) ([]uint, error)
	// ListForIndex 按ID升序分批读取已发布文章，用于重建搜索索引
	ListForIndex(ctx context.Context, afterID uint, batch int) ([]model.Article, error)
}

// CommentRepository 评论数据访问
type CommentRepository interface {
	// Create 创建评论并加载作者
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id uint) (*model.Comment, error)
	// ListTopLevel 顶级评论按创建时间倒序，填充作者和回复数
	ListTopLevel(ctx context.Context, articleID uint, offset, limit int) ([]model.Comment, error)
	CountTopLevel(ctx context.Context, articleID uint) (int64, error)
	// DeleteWithReplies 删除评论及其回复，返回删除行数
	DeleteWithReplies(ctx context.Context, id uint) (int64, error)
}

// LikeRepository 点赞数据访问
type LikeRepository interface {
	// Toggle 原子切换点赞状态，返回切换后是否已点赞
	Toggle(ctx context.Context, articleID, userID uint) (bool, error)
	Count(ctx context.Context, articleID uint) (int64, error)
	Exists(ctx context.Context, articleID, userID uint) (bool, error)
}

// UserRepository 用户数据访问
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}

// TaxonomyRepository 分类和标签数据访问
type TaxonomyRepository interface {
	ListCategories(ctx context.Context) ([]NamedCount, error)
	ListTags(ctx context.Context) ([]NamedCount, error)
}

// NotificationRepository 通知数据访问
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	List(ctx context.Context, userID uint, offset, limit int) ([]model.Notification, int64, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	// MarkRead 标记为已读，通知不属于该用户时返回ErrNotFound
	MarkRead(ctx context.Context, id, userID uint) error
}
