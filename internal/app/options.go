package app

import (
	"os"
	"strings"
	"time"

	"github.com/tinythreads/internal/config"
	"github.com/tinythreads/internal/logger"

	"go.uber.org/zap"
)

// 启动模式
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

const defaultShutdownTimeout = 10 * time.Second

// modePlan 启动模式对应需要运行的服务
type modePlan struct {
	http   bool
	worker bool
}

var modePlans = map[string]modePlan{
	ModeAll:    {http: true, worker: true},
	ModeAPI:    {http: true},
	ModeWorker: {worker: true},
}

// Options 应用启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}
	if opts.Mode = strings.ToLower(strings.TrimSpace(opts.Mode)); opts.Mode == "" {
		opts.Mode = ModeAll
	}
	return opts
}

func validMode(mode string) bool {
	_, ok := modePlans[mode]
	return ok
}
