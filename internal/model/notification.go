package model

// 通知类型
const (
	NotificationArticleLike = "article_like"
	NotificationComment     = "comment"
	NotificationReply       = "reply"
)

// Notification 通知模型
type Notification struct {
	Base
	UserID    uint   `gorm:"not null;index" json:"user_id"` // 接收者
	ActorID   uint   `gorm:"not null;index" json:"actor_id"`
	ArticleID uint   `gorm:"not null;index" json:"article_id"`
	CommentID *uint  `gorm:"index" json:"comment_id"`
	Type      string `gorm:"type:varchar(20);not null;index" json:"type"`
	Content   string `gorm:"type:text;not null" json:"content"`
	IsRead    bool   `gorm:"not null;default:false;index" json:"is_read"`

	// 关联
	Actor User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}
