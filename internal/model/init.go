package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"gorm.io/gorm"
)

// 需要自动迁移的模型列表
var models = []interface{}{
	&User{},
	&Category{},
	&Tag{},
	&Article{},
	&Comment{},
	&ArticleLike{},
	&Notification{},
}

// InitTables 初始化数据库表
func InitTables(db *gorm.DB) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("自动迁移数据库表失败: %w", err)
	}
	return nil
}

// InitESIndex 初始化Elasticsearch索引，已存在则跳过
func InitESIndex(ctx context.Context, client *elasticsearch.Client, index string) error {
	resp, err := client.Indices.Exists([]string{index}, client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("检查索引 %s 是否存在时出错: %w", index, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		return nil
	}

	createResp, err := client.Indices.Create(
		index,
		client.Indices.Create.WithContext(ctx),
		client.Indices.Create.WithBody(strings.NewReader(ESArticle{}.ESMapping())),
	)
	if err != nil {
		return fmt.Errorf("创建索引 %s 失败: %w", index, err)
	}
	defer createResp.Body.Close()
	if createResp.IsError() {
		return fmt.Errorf("创建索引 %s 返回错误: %s", index, createResp.String())
	}
	return nil
}
