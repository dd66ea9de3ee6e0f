package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/zemenay/techpulse-api/internal/controller"
	"github.com/zemenay/techpulse-api/internal/event"
	"github.com/zemenay/techpulse-api/internal/logger"
	"github.com/zemenay/techpulse-api/internal/middleware"
	"github.com/zemenay/techpulse-api/internal/repository/gormrepo"
	"github.com/zemenay/techpulse-api/internal/router"
	"github.com/zemenay/techpulse-api/internal/service"
	"github.com/zemenay/techpulse-api/internal/task"
	"github.com/zemenay/techpulse-api/pkg/cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// serveCmd 启动服务命令
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动HTTP服务",
	Long:  `启动HTTP服务器和定时任务，未启用RabbitMQ时在进程内生成通知`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// startServer 启动HTTP服务
func startServer() error {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in, err := connectInfra(ctx)
	if err != nil {
		return err
	}
	defer in.close()
	cfg := in.cfg
	log := logger.GetSugaredLogger()

	if err := middleware.RegisterValidators(); err != nil {
		return err
	}
	tokens, err := in.tokenManager()
	if err != nil {
		return err
	}

	articleRepo := gormrepo.NewArticleRepo(in.db)
	commentRepo := gormrepo.NewCommentRepo(in.db)
	likeRepo := gormrepo.NewLikeRepo(in.db)
	userRepo := gormrepo.NewUserRepo(in.db)

	// 敏感词过滤
	var words []string
	if cfg.Sensitive.WordsFile != "" {
		if words, err = service.LoadSensitiveWords(cfg.Sensitive.WordsFile); err != nil {
			log.Warnf("加载敏感词失败，不启用过滤: %v", err)
		}
	}
	filter := service.NewContentFilter(words)

	// 事件发布：启用RabbitMQ时交给worker，否则进程内同步处理
	notifications := in.notificationService()
	var publisher event.Publisher = event.NewInlinePublisher(notifications)
	if in.mq != nil {
		publisher = event.NewAMQPPublisher(in.mq.Channel, cfg.RabbitMQ.Exchange)
	}

	articleOpts := []service.ArticleOption{
		service.WithViewDedupeWindow(time.Duration(cfg.Article.ViewDedupeWindowSeconds) * time.Second),
	}
	var cacheManager *cache.Manager
	if in.redis != nil {
		cacheManager = cache.NewManager()
		if err := cacheManager.Initialize(ctx, in.redis); err != nil {
			return err
		}
		ids, err := articleRepo.ListIDs(ctx)
		if err != nil {
			return fmt.Errorf("预热布隆过滤器失败: %w", err)
		}
		cacheManager.WarmUp(ids)
		articleOpts = append(articleOpts, service.WithArticleCache(cacheManager.ArticleCache()))
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := cacheManager.Close(closeCtx); err != nil {
				log.Warnf("关闭缓存失败: %v", err)
			}
		}()
	}

	var searcher service.Searcher = service.DisabledSearch{}
	search := in.searchService()
	if search != nil {
		searcher = search
		articleOpts = append(articleOpts, service.WithIndexer(search))
	}

	userService := service.NewUserService(userRepo, tokens, log)
	pages := controller.PageConfig{DefaultLimit: cfg.Article.DefaultPageSize, MaxLimit: cfg.Article.MaxPageSize}
	limiter := middleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, 10*time.Minute)

	deps := router.Deps{
		Config:  cfg,
		Auth:    middleware.NewAuthenticator(tokens),
		Limiter: limiter,
		Users: controller.NewUserApi(
			userService,
			service.NewOAuthService(cfg.OAuth.Google, userRepo, userService, log),
			log,
		),
		Articles: controller.NewArticleApi(
			service.NewArticleService(articleRepo, likeRepo, log, articleOpts...),
			searcher, pages, log,
		),
		Interactions: controller.NewInteractionApi(
			service.NewInteractionService(articleRepo, commentRepo, likeRepo, filter, publisher, log),
			pages, log,
		),
		Taxonomy:     controller.NewTaxonomyApi(service.NewTaxonomyService(gormrepo.NewTaxonomyRepo(in.db)), log),
		Notification: controller.NewNotificationApi(notifications, pages, log),
		Health:       controller.NewHealthApi(in.healthChecks()),
	}

	// 定时任务
	scheduler := task.NewScheduler(log, task.DefaultTimeout)
	jobs := task.Jobs{Limiter: limiter}
	if search != nil {
		jobs.Search, jobs.Articles = search, articleRepo
	}
	if cacheManager != nil {
		jobs.Bloom = cacheManager
	}
	if err := task.RegisterAll(scheduler, cfg.Cron, jobs, log); err != nil {
		return err
	}
	scheduler.Start()

	gin.SetMode(cfg.App.Mode)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router.New(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("服务已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP服务启动失败: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("关闭服务...")

		// 设置关闭超时
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		scheduler.Stop(shutdownCtx)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("服务关闭异常: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("服务已关闭")
	return nil
}

// healthChecks 已连接依赖的健康检查
func (in *infra) healthChecks() map[string]controller.HealthCheck {
	checks := map[string]controller.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := in.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if in.redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return in.redis.Ping(ctx).Err()
		}
	}
	if in.es != nil {
		checks["elasticsearch"] = func(ctx context.Context) error {
			res, err := in.es.Ping(in.es.Ping.WithContext(ctx))
			if err != nil {
				return err
			}
			defer res.Body.Close()
			if res.IsError() {
				return errors.New(res.Status())
			}
			return nil
		}
	}
	if in.mq != nil {
		checks["rabbitmq"] = func(context.Context) error {
			if in.mq.Conn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}
	}
	return checks
}
