// Package pagination 分页参数解析与元数据计算
package pagination

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

var (
	ErrInvalidPage  = errors.New("page must be a positive integer")
	ErrInvalidLimit = errors.New("limit must be a positive integer")
)

// Params 分页参数，Page从1开始
type Params struct {
	Page  int
	Limit int
}

// Meta 分页元数据
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
	Limit      int   `json:"limit"`
}

// Parse 解析查询字符串中的page和limit，空值取默认值，limit超过maxLimit时截断
func Parse(pageStr, limitStr string, defaultLimit, maxLimit int) (Params, error) {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}

	p := Params{Page: DefaultPage, Limit: defaultLimit}

	if s := strings.TrimSpace(pageStr); s != "" {
		page, err := strconv.Atoi(s)
		if err != nil || page < 1 {
			return Params{}, ErrInvalidPage
		}
		p.Page = page
	}

	if s := strings.TrimSpace(limitStr); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 1 {
			return Params{}, ErrInvalidLimit
		}
		p.Limit = limit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	// 偏移量 (page-1)*limit 不能溢出
	if p.Page-1 > math.MaxInt/p.Limit {
		return Params{}, ErrInvalidPage
	}
	return p, nil
}

// Offset 数据库OFFSET
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages 向上取整的总页数，total为0时返回0
func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// NewMeta 构造分页元数据
func NewMeta(total int64, p Params) Meta {
	return Meta{
		Total:      total,
		Page:       p.Page,
		TotalPages: TotalPages(total, p.Limit),
		Limit:      p.Limit,
	}
}
