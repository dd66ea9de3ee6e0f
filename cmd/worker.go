package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zemenay/techpulse-api/internal/event"
	"github.com/zemenay/techpulse-api/internal/logger"
)

// workerCmd 通知消费者命令
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "启动通知消费者",
	Long:  `从RabbitMQ消费文章互动事件并生成站内通知`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorker()
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker() error {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in, err := connectInfra(ctx)
	if err != nil {
		return err
	}
	defer in.close()
	if in.mq == nil {
		return errors.New("rabbitmq未启用，worker无事可做")
	}

	cfg := in.cfg.RabbitMQ
	consumer := event.NewConsumer(in.mq.Channel, cfg.Queue, cfg.Prefetch, in.notificationService(), logger.GetSugaredLogger())
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("worker已退出")
	return nil
}
