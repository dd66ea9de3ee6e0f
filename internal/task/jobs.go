package task

import (
	"context"

	"github.com/zemenay/techpulse-api/internal/config"
	"github.com/zemenay/techpulse-api/internal/repository"
	"go.uber.org/zap"
)

// Reindexer 全量重建搜索索引
type Reindexer interface {
	Reindex(ctx context.Context, articles repository.ArticleRepository) (int, error)
}

// BloomSaver 持久化布隆过滤器
type BloomSaver interface {
	SaveBloomFilters(ctx context.Context) error
}

// Cleaner 清理过期的限流记录
type Cleaner interface {
	Cleanup() int
}

// Jobs 可注册的任务依赖，为nil的依赖对应任务不注册
type Jobs struct {
	Search   Reindexer
	Articles repository.ArticleRepository
	Bloom    BloomSaver
	Limiter  Cleaner
}

const limiterCleanupSpec = "0 */5 * * * *"

// RegisterAll 按配置注册全部定时任务
func RegisterAll(s *Scheduler, cfg config.CronConfig, jobs Jobs, logger *zap.SugaredLogger) error {
	if jobs.Search != nil && jobs.Articles != nil {
		err := s.Register("search_reindex", cfg.SearchSync, func(ctx context.Context) error {
			n, err := jobs.Search.Reindex(ctx, jobs.Articles)
			if err != nil {
				return err
			}
			logger.Infof("搜索索引同步完成，共 %d 篇文章", n)
			return nil
		})
		if err != nil {
			return err
		}
	}
	if jobs.Bloom != nil {
		if err := s.Register("bloom_save", cfg.BloomSave, jobs.Bloom.SaveBloomFilters); err != nil {
			return err
		}
	}
	if jobs.Limiter != nil {
		err := s.Register("rate_limit_cleanup", limiterCleanupSpec, func(context.Context) error {
			if n := jobs.Limiter.Cleanup(); n > 0 {
				logger.Debugf("清理限流记录 %d 条", n)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
