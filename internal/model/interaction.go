package model

// ArticleLike 文章点赞模型，(article_id, user_id) 唯一
type ArticleLike struct {
	Base
	ArticleID uint `gorm:"not null;uniqueIndex:idx_article_like_user" json:"article_id"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_article_like_user;index" json:"user_id"`
}

// TableName 指定表名
func (ArticleLike) TableName() string {
	return "article_likes"
}
