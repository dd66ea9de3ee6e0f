package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zemenay/techpulse-api/internal/repository/gormrepo"
)

// searchCmd 搜索索引管理命令
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "搜索索引管理",
}

// reindexCmd 全量重建搜索索引
// 示例：./techpulse-api search reindex
var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "重建文章搜索索引",
	Long:  `将数据库中的全部文章同步到Elasticsearch`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return reindex(cmd.Context())
	},
}

func init() {
	searchCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(searchCmd)
}

func reindex(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	in, err := connectInfra(ctx)
	if err != nil {
		return err
	}
	defer in.close()

	search := in.searchService()
	if search == nil {
		return errors.New("elasticsearch未启用")
	}
	n, err := search.Reindex(ctx, gormrepo.NewArticleRepo(in.db))
	if err != nil {
		return err
	}
	fmt.Printf("成功同步 %d 篇文章\n", n)
	return nil
}
