package model

import (
	"fmt"
	"time"
)

// Article 文章模型
type Article struct {
	Base
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Summary     string     `gorm:"type:text" json:"summary"`
	Content     string     `gorm:"type:text;not null" json:"content"` // markdown原文
	Published   bool       `gorm:"not null;default:false;index" json:"published"`
	PublishedAt *time.Time `gorm:"index" json:"published_at"`
	Views       int64      `gorm:"not null;default:0" json:"views"`
	AuthorID    uint       `gorm:"not null;index" json:"author_id"`

	// 关联
	Author     User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Categories []Category    `gorm:"many2many:article_categories;" json:"categories,omitempty"`
	Tags       []Tag         `gorm:"many2many:article_tags;" json:"tags,omitempty"`
	Comments   []Comment     `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	Likes      []ArticleLike `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (Article) TableName() string {
	return "articles"
}

// ESDocID Elasticsearch文档ID
func (a *Article) ESDocID() string {
	return fmt.Sprintf("article_%d", a.ID)
}

// CategoryNames 分类名称列表
func (a *Article) CategoryNames() []string {
	names := make([]string, 0, len(a.Categories))
	for _, c := range a.Categories {
		names = append(names, c.Name)
	}
	return names
}

// TagNames 标签名称列表
func (a *Article) TagNames() []string {
	names := make([]string, 0, len(a.Tags))
	for _, t := range a.Tags {
		names = append(names, t.Name)
	}
	return names
}

// ToSearchDocument 转换为搜索文档，content为纯文本正文
func (a *Article) ToSearchDocument(content string) *ESArticle {
	var publishedAt time.Time
	if a.PublishedAt != nil {
		publishedAt = *a.PublishedAt
	}
	return &ESArticle{
		ID:          a.ESDocID(),
		ArticleID:   a.ID,
		Title:       a.Title,
		Summary:     a.Summary,
		Content:     content,
		AuthorID:    a.AuthorID,
		AuthorName:  a.Author.Name,
		Categories:  a.CategoryNames(),
		Tags:        a.TagNames(),
		Published:   a.Published,
		PublishedAt: publishedAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
