package model

// Comment 评论模型，只有两级：顶级评论和它的直接回复
type Comment struct {
	Base
	Content   string `gorm:"type:text;not null" json:"content"`
	ArticleID uint   `gorm:"not null;index:idx_comment_article_parent" json:"article_id"`
	AuthorID  uint   `gorm:"not null;index" json:"author_id"`
	ParentID  *uint  `gorm:"index:idx_comment_article_parent" json:"parent_id"`

	// 回复数，由查询填充
	ReplyCount int64 `gorm:"-" json:"reply_count"`

	// 关联
	Author  User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Replies []Comment `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"replies,omitempty"`
}

// TableName 指定表名
func (Comment) TableName() string {
	return "comments"
}

// IsTopLevel 是否为顶级评论
func (c *Comment) IsTopLevel() bool {
	return c.ParentID == nil
}
