package dto

import (
	"time"

	"github.com/zemenay/techpulse-api/internal/model"
)

// AuthorSummary 作者摘要信息
type AuthorSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image"`
}

// NewAuthorSummary 从用户模型构建作者摘要
func NewAuthorSummary(u *model.User) AuthorSummary {
	return AuthorSummary{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Image: u.Image,
	}
}

// CommentCount 评论计数
type CommentCount struct {
	Replies int64 `json:"replies"`
}

// CommentResponse 评论响应
type CommentResponse struct {
	ID        uint              `json:"id"`
	Content   string            `json:"content"`
	ArticleID uint              `json:"articleId"`
	AuthorID  uint              `json:"authorId"`
	ParentID  *uint             `json:"parentId"`
	CreatedAt time.Time         `json:"createdAt"`
	Author    AuthorSummary     `json:"author"`
	Count     CommentCount      `json:"_count"`
	Replies   []CommentResponse `json:"replies,omitempty"`
}

// NewCommentResponse 构建评论响应，已加载的回复一并转换
func NewCommentResponse(c *model.Comment) CommentResponse {
	resp := CommentResponse{
		ID:        c.ID,
		Content:   c.Content,
		ArticleID: c.ArticleID,
		AuthorID:  c.AuthorID,
		ParentID:  c.ParentID,
		CreatedAt: c.CreatedAt,
		Author:    NewAuthorSummary(&c.Author),
		Count:     CommentCount{Replies: c.ReplyCount},
	}
	if len(c.Replies) > 0 {
		resp.Replies = make([]CommentResponse, 0, len(c.Replies))
		for i := range c.Replies {
			resp.Replies = append(resp.Replies, NewCommentResponse(&c.Replies[i]))
		}
		if resp.Count.Replies == 0 {
			resp.Count.Replies = int64(len(c.Replies))
		}
	}
	return resp
}

// NewCommentResponses 批量构建评论响应，结果不为nil
func NewCommentResponses(comments []model.Comment) []CommentResponse {
	list := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		list = append(list, NewCommentResponse(&comments[i]))
	}
	return list
}
