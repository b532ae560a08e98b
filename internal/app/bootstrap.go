package app

import (
	"errors"

	"github.com/tinythreads/internal/config"
	"github.com/tinythreads/internal/provider"
	"github.com/tinythreads/internal/router"
	"github.com/tinythreads/internal/worker"
)

// ErrQueueDisabled worker 模式要求启用队列
var ErrQueueDisabled = errors.New("worker mode requires queue.enabled")

// BuildRunner 按启动模式组装 HTTP 与 Worker 服务
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	plan, ok := modePlans[mode]
	if !ok {
		return nil, errors.New("unknown mode: " + mode)
	}
	if plan.worker && !plan.http && !cfg.Queue.Enabled {
		return nil, ErrQueueDisabled
	}

	container := provider.NewContainer(cfg)

	var services []Service
	if plan.http {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(cfg.Server.Addr(), engine))
	}
	// 队列关闭时通知邮件不会入队，all 模式下直接跳过 worker
	if plan.worker && cfg.Queue.Enabled {
		workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}
	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}
	if !validMode(opts.Mode) {
		return errors.New("unknown mode: " + opts.Mode)
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	opts.Logger.Infow("app_start",
		"addr", opts.Config.Server.Addr(),
		"mode", opts.Mode,
		"queue_enabled", opts.Config.Queue.Enabled,
		"store", opts.Config.Store.Name,
	)
	return RunWithOptions(runner, opts)
}
