package dto

import "github.com/zemenay/techpulse-api/pkg/pagination"

// 互动动作
const (
	ActionLike    = "like"
	ActionComment = "comment"
)

// InteractionRequest 文章互动请求
type InteractionRequest struct {
	Action   string `json:"action" binding:"required,oneof=like comment"`
	Content  string `json:"content"`
	ParentID *uint  `json:"parentId"`
}

// LikeSummary 点赞汇总
type LikeSummary struct {
	Count     int64 `json:"count"`
	UserLiked bool  `json:"userLiked"`
}

// CommentPage 顶级评论分页
type CommentPage struct {
	Data       []CommentResponse `json:"data"`
	Pagination pagination.Meta   `json:"pagination"`
}

// InteractionResponse 文章互动汇总响应
type InteractionResponse struct {
	Likes    LikeSummary `json:"likes"`
	Comments CommentPage `json:"comments"`
}

// ToggleLikeResponse 点赞切换响应
type ToggleLikeResponse struct {
	Liked bool `json:"liked"`
}

// SuccessResponse 操作成功响应
type SuccessResponse struct {
	Success bool `json:"success"`
}
