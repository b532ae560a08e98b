package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tinythreads/internal/config"
	"github.com/tinythreads/internal/logger"
	"github.com/tinythreads/internal/queue"

	"github.com/hibiken/asynq"
)

const workerShutdownTimeout = 8 * time.Second

var errWorkerNotReady = errors.New("worker not initialized")

// Service 询价通知消费者，作为 app.Runner 的一个服务运行
type Service struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	serverCfg.Logger = logger.Named("asynq")
	serverCfg.ShutdownTimeout = workerShutdownTimeout
	serverCfg.ErrorHandler = asynq.ErrorHandlerFunc(logTaskFailure)

	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{server: asynq.NewServer(opt, serverCfg), mux: mux}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	return "worker"
}

// Start 启动消费者并阻塞到 ctx 结束，信号由 Runner 统一处理
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errWorkerNotReady
	}
	if err := s.server.Start(s.mux); err != nil {
		return fmt.Errorf("start worker failed: %w", err)
	}
	<-ctx.Done()
	return nil
}

// Stop 等待进行中的任务结束，超时后任务回到队列
func (s *Service) Stop(_ context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.server.Shutdown()
	return nil
}

// logTaskFailure 记录每次失败，便于排查邮件投递
func logTaskFailure(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	taskID, _ := asynq.GetTaskID(ctx)
	logger.Warnw("worker_task_failed",
		"task_type", task.Type(),
		"task_id", taskID,
		"retried", retried,
		"max_retry", maxRetry,
		"error", err,
	)
}
