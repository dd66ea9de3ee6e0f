package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zemenay/techpulse-api/internal/logger"
	"github.com/zemenay/techpulse-api/internal/model"
)

// migrateCmd 初始化数据库表和搜索索引
// 示例：./techpulse-api migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "初始化数据库表",
	Long:  `自动迁移数据库表结构，启用Elasticsearch时同时创建文章索引`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return migrate(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func migrate(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	in, err := connectInfra(ctx)
	if err != nil {
		return err
	}
	defer in.close()

	if err := model.InitTables(in.db); err != nil {
		return fmt.Errorf("初始化数据库表失败: %w", err)
	}
	logger.Info("数据库表初始化完成")

	if in.es != nil {
		if err := model.InitESIndex(ctx, in.es, in.cfg.Elasticsearch.Index); err != nil {
			return fmt.Errorf("初始化Elasticsearch索引失败: %w", err)
		}
		logger.Info("Elasticsearch索引初始化完成")
	}
	return nil
}
