// Package task 定时任务
package task

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultTimeout 单次任务超时时间
const DefaultTimeout = 10 * time.Minute

// Job 定时任务函数
type Job func(ctx context.Context) error

// Scheduler 基于cron的任务调度器，同一任务上一次未结束时跳过本次
type Scheduler struct {
	cron    *cron.Cron
	logger  *zap.SugaredLogger
	timeout time.Duration
}

// NewScheduler 创建调度器，表达式包含秒字段
func NewScheduler(logger *zap.SugaredLogger, timeout time.Duration) *Scheduler {
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	return &Scheduler{cron: c, logger: logger, timeout: timeout}
}

// Register 注册任务，spec为空时不注册
func (s *Scheduler) Register(name, spec string, job Job) error {
	if spec == "" {
		s.logger.Infof("定时任务 %s 未配置，跳过", name)
		return nil
	}
	if _, err := s.cron.AddFunc(spec, func() { s.run(name, job) }); err != nil {
		return fmt.Errorf("注册定时任务 %s 失败: %w", name, err)
	}
	s.logger.Infof("定时任务 %s 已注册: %s", name, spec)
	return nil
}

func (s *Scheduler) run(name string, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := job(ctx); err != nil {
		s.logger.Errorw("定时任务执行失败", "task", name, "error", err, "cost", time.Since(start))
		return
	}
	s.logger.Debugw("定时任务执行完成", "task", name, "cost", time.Since(start))
}

// Len 已注册任务数
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Start 启动调度
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 停止调度并等待运行中的任务结束
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}
