package dto

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/zemenay/techpulse-api/internal/model"
	"github.com/zemenay/techpulse-api/pkg/pagination"
)

// NameListPatch 分类/标签名称列表的更新方式：未指定或整体替换
type NameListPatch struct {
	replace bool
	names   []string
}

// Unspecified 不修改关联
func Unspecified() NameListPatch {
	return NameListPatch{}
}

// ReplaceWith 用给定名称整体替换关联，空列表表示清空
func ReplaceWith(names ...string) NameListPatch {
	return NameListPatch{replace: true, names: normalizeNames(names)}
}

// Names 返回替换名称列表，ok为false表示未指定
func (p NameListPatch) Names() (names []string, ok bool) {
	return p.names, p.replace
}

// UnmarshalJSON 字段缺失或为null时保持未指定，数组时整体替换
func (p *NameListPatch) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = Unspecified()
		return nil
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	*p = ReplaceWith(names...)
	return nil
}

// MarshalJSON 未指定时输出null
func (p NameListPatch) MarshalJSON() ([]byte, error) {
	if !p.replace {
		return []byte("null"), nil
	}
	if p.names == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p.names)
}

// normalizeNames 去除首尾空白、空名称和重复名称，保持顺序
func normalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// ArticleCreateRequest 创建文章请求
type ArticleCreateRequest struct {
	Title      string   `json:"title" binding:"required,notblank,max=255"` // 文章标题
	Summary    string   `json:"summary" binding:"max=500"`                 // 文章摘要，为空时从正文生成
	Content    string   `json:"content" binding:"required,notblank"`       // markdown正文
	Published  bool     `json:"published"`                                 // 是否直接发布
	Categories []string `json:"categories" binding:"max=10"`               // 分类名称
	Tags       []string `json:"tags" binding:"max=20"`                     // 标签名称
}

// ArticleUpdateRequest 更新文章请求，nil字段不修改
type ArticleUpdateRequest struct {
	Title      *string       `json:"title" binding:"omitempty,notblank,max=255"`
	Summary    *string       `json:"summary" binding:"omitempty,max=500"`
	Content    *string       `json:"content" binding:"omitempty,notblank"`
	Published  *bool         `json:"published"`
	Categories NameListPatch `json:"categories"`
	Tags       NameListPatch `json:"tags"`
}

// ArticleListQuery 文章列表过滤条件
type ArticleListQuery struct {
	Category string `form:"category"`
	Tag      string `form:"tag"`
	AuthorID uint   `form:"authorId"`
}

// TaxonomyItem 分类/标签
type TaxonomyItem struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	ArticleCount int64  `json:"articleCount,omitempty"`
}

// ArticleCount 文章计数
type ArticleCount struct {
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
}

// ArticleDetailResponse 文章详情响应
type ArticleDetailResponse struct {
	ID          uint              `json:"id"`
	Title       string            `json:"title"`
	Summary     string            `json:"summary"`
	Content     string            `json:"content"`
	ContentHTML string            `json:"contentHtml"`
	Published   bool              `json:"published"`
	PublishedAt *time.Time        `json:"publishedAt"`
	Views       int64             `json:"views"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	Author      AuthorSummary     `json:"author"`
	Categories  []TaxonomyItem    `json:"categories"`
	Tags        []TaxonomyItem    `json:"tags"`
	Comments    []CommentResponse `json:"comments"`
	Count       ArticleCount      `json:"_count"`
}

// NewArticleDetailResponse 构建文章详情响应，comments为两级评论树
func NewArticleDetailResponse(a *model.Article, html string, likes int64) *ArticleDetailResponse {
	resp := &ArticleDetailResponse{
		ID:          a.ID,
		Title:       a.Title,
		Summary:     a.Summary,
		Content:     a.Content,
		ContentHTML: html,
		Published:   a.Published,
		PublishedAt: a.PublishedAt,
		Views:       a.Views,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
		Author:      NewAuthorSummary(&a.Author),
		Categories:  categoryItems(a.Categories),
		Tags:        tagItems(a.Tags),
		Comments:    NewCommentResponses(a.Comments),
		Count:       ArticleCount{Likes: likes},
	}
	for _, c := range resp.Comments {
		resp.Count.Comments += 1 + int64(len(c.Replies))
	}
	return resp
}

// ArticleListItem 文章列表项
type ArticleListItem struct {
	ID          uint           `json:"id"`
	Title       string         `json:"title"`
	Summary     string         `json:"summary"`
	Published   bool           `json:"published"`
	PublishedAt *time.Time     `json:"publishedAt"`
	Views       int64          `json:"views"`
	CreatedAt   time.Time      `json:"createdAt"`
	Author      AuthorSummary  `json:"author"`
	Categories  []TaxonomyItem `json:"categories"`
	Tags        []TaxonomyItem `json:"tags"`
}

// NewArticleListItem 构建文章列表项
func NewArticleListItem(a *model.Article) ArticleListItem {
	return ArticleListItem{
		ID:          a.ID,
		Title:       a.Title,
		Summary:     a.Summary,
		Published:   a.Published,
		PublishedAt: a.PublishedAt,
		Views:       a.Views,
		CreatedAt:   a.CreatedAt,
		Author:      NewAuthorSummary(&a.Author),
		Categories:  categoryItems(a.Categories),
		Tags:        tagItems(a.Tags),
	}
}

// ArticleListResponse 文章列表响应
type ArticleListResponse struct {
	Data       []ArticleListItem `json:"data"`
	Pagination pagination.Meta   `json:"pagination"`
}

// SearchHit 搜索结果
type SearchHit struct {
	ArticleID  uint      `json:"articleId"`
	Title      string    `json:"title"`
	Summary    string    `json:"summary"`
	AuthorName string    `json:"authorName"`
	Tags       []string  `json:"tags"`
	Highlights []string  `json:"highlights,omitempty"`
	Score      float64   `json:"score"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SearchResponse 搜索响应
type SearchResponse struct {
	Data       []SearchHit     `json:"data"`
	Pagination pagination.Meta `json:"pagination"`
}

func categoryItems(list []model.Category) []TaxonomyItem {
	items := make([]TaxonomyItem, 0, len(list))
	for _, c := range list {
		items = append(items, TaxonomyItem{ID: c.ID, Name: c.Name})
	}
	return items
}

func tagItems(list []model.Tag) []TaxonomyItem {
	items := make([]TaxonomyItem, 0, len(list))
	for _, t := range list {
		items = append(items, TaxonomyItem{ID: t.ID, Name: t.Name})
	}
	return items
}
