package gormrepo

import (
	"context"

	"github.com/zemenay/techpulse-api/internal/repository"
	"gorm.io/gorm"
)

// TaxonomyRepo 分类和标签仓储
type TaxonomyRepo struct {
	db *gorm.DB
}

// NewTaxonomyRepo 创建分类和标签仓储
func NewTaxonomyRepo(db *gorm.DB) *TaxonomyRepo {
	return &TaxonomyRepo{db: db}
}

var _ repository.TaxonomyRepository = (*TaxonomyRepo)(nil)

// ListCategories 分类列表及已发布文章数
func (r *TaxonomyRepo) ListCategories(ctx context.Context) ([]repository.NamedCount, error) {
	return r.listWithCounts(ctx, "categories", "article_categories", "category_id")
}

// ListTags 标签列表及已发布文章数
func (r *TaxonomyRepo) ListTags(ctx context.Context) ([]repository.NamedCount, error) {
	return r.listWithCounts(ctx, "tags", "article_tags", "tag_id")
}

func (r *TaxonomyRepo) listWithCounts(ctx context.Context, table, joinTable, fk string) ([]repository.NamedCount, error) {
	rows := make([]repository.NamedCount, 0)
	err := r.db.WithContext(ctx).Table(table).
		Select(table+".id, "+table+".name, COUNT(articles.id) AS article_count").
		Joins("LEFT JOIN "+joinTable+" ON "+joinTable+"."+fk+" = "+table+".id").
		Joins("LEFT JOIN articles ON articles.id = "+joinTable+".article_id AND articles.published = ?", true).
		Group(table + ".id, " + table + ".name").
		Order(table + ".name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, "list "+table)
	}
	return rows, nil
}
