package service

import (
	"context"
	"fmt"

	"github.com/zemenay/techpulse-api/internal/dto"
	"github.com/zemenay/techpulse-api/internal/repository"
)

// TaxonomyService 分类与标签查询
type TaxonomyService struct {
	repo repository.TaxonomyRepository
}

// NewTaxonomyService 创建分类标签服务
func NewTaxonomyService(repo repository.TaxonomyRepository) *TaxonomyService {
	return &TaxonomyService{repo: repo}
}

// Categories 全部分类及已发布文章数
func (s *TaxonomyService) Categories(ctx context.Context) ([]dto.TaxonomyItem, error) {
	list, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询分类失败: %w", err)
	}
	return taxonomyItems(list), nil
}

// Tags 全部标签及已发布文章数
func (s *TaxonomyService) Tags(ctx context.Context) ([]dto.TaxonomyItem, error) {
	list, err := s.repo.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询标签失败: %w", err)
	}
	return taxonomyItems(list), nil
}

func taxonomyItems(list []repository.NamedCount) []dto.TaxonomyItem {
	items := make([]dto.TaxonomyItem, 0, len(list))
	for _, nc := range list {
		items = append(items, dto.TaxonomyItem{ID: nc.ID, Name: nc.Name, ArticleCount: nc.ArticleCount})
	}
	return items
}
