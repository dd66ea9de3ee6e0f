package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/zemenay/techpulse-api/internal/config"
	"github.com/zemenay/techpulse-api/internal/database"
	"github.com/zemenay/techpulse-api/internal/logger"
	"github.com/zemenay/techpulse-api/internal/repository/gormrepo"
	"github.com/zemenay/techpulse-api/internal/service"
	"github.com/zemenay/techpulse-api/pkg/auth"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var configPath string

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "techpulse-api",
	Short: "TechPulse文章互动服务",
	Long:  `TechPulse 博客后端，提供文章、点赞、评论、通知与搜索接口`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "version", "help":
			return nil
		}
		return initializeSystem()
	},
	SilenceUsage: true,
}

func init() {
	// 添加全局标志
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./config", "配置文件路径")
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// initializeSystem 初始化配置和日志
func initializeSystem() error {
	if err := config.Init(configPath); err != nil {
		return fmt.Errorf("配置初始化失败: %w", err)
	}
	cfg := config.GetConfig()
	logger.InitLogger(&cfg.Log)

	// 日志级别支持热更新
	config.OnChange(func(c *config.Config) {
		logger.SetLevel(c.Log.Level)
		logger.Info("配置已重新加载", zap.String("log_level", c.Log.Level))
	})
	config.Watch()
	return nil
}

// infra 外部依赖连接
type infra struct {
	cfg   *config.Config
	db    *gorm.DB
	redis *redis.Client
	es    *elasticsearch.Client
	mq    *database.RabbitMQ
}

// connectInfra 按配置连接数据库、Redis、Elasticsearch和RabbitMQ
// 只有数据库是必需的，其余依赖未启用时为nil
func connectInfra(ctx context.Context) (*infra, error) {
	cfg := config.GetConfig()
	in := &infra{cfg: cfg}

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		return nil, err
	}
	in.db = db

	if cfg.Redis.Enabled {
		if in.redis, err = database.InitRedis(ctx, &cfg.Redis); err != nil {
			in.close()
			return nil, err
		}
	}
	if cfg.Elasticsearch.Enabled {
		if in.es, err = database.InitElasticsearch(ctx, &cfg.Elasticsearch); err != nil {
			in.close()
			return nil, err
		}
	}
	if cfg.RabbitMQ.Enabled {
		if in.mq, err = database.InitRabbitMQ(&cfg.RabbitMQ); err != nil {
			in.close()
			return nil, err
		}
	}
	return in, nil
}

func (in *infra) close() {
	if in.mq != nil {
		if err := in.mq.Close(); err != nil {
			logger.Warn("关闭RabbitMQ失败", zap.Error(err))
		}
	}
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			logger.Warn("关闭redis失败", zap.Error(err))
		}
	}
	if in.db != nil {
		if sqlDB, err := in.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// tokenManager 创建令牌管理器，Redis可用时使用Redis黑名单
func (in *infra) tokenManager() (*auth.TokenManager, error) {
	if epoch, err := time.Parse("2006-01-02", in.cfg.Snowflake.Epoch); err == nil {
		snowflake.Epoch = epoch.UnixMilli()
	}
	node, err := snowflake.NewNode(in.cfg.Snowflake.Node)
	if err != nil {
		return nil, fmt.Errorf("创建snowflake节点失败: %w", err)
	}

	var blacklist auth.Blacklist
	if in.cfg.JWT.Blacklist == "redis" && in.redis != nil {
		blacklist = auth.NewRedisBlacklist(in.redis)
	}
	return auth.NewTokenManager(in.cfg.JWT, blacklist, node)
}

// searchService Elasticsearch未启用时返回nil
func (in *infra) searchService() *service.SearchService {
	if in.es == nil {
		return nil
	}
	return service.NewSearchService(in.es, in.cfg.Elasticsearch.Index, logger.GetSugaredLogger())
}

// notificationService 创建通知服务
func (in *infra) notificationService() *service.NotificationService {
	return service.NewNotificationService(
		gormrepo.NewNotificationRepo(in.db),
		gormrepo.NewArticleRepo(in.db),
		gormrepo.NewCommentRepo(in.db),
		gormrepo.NewUserRepo(in.db),
		logger.GetSugaredLogger(),
	)
}
