package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"syscall"

	"github.com/tinythreads/internal/app"
	"github.com/tinythreads/internal/config"
	"github.com/tinythreads/internal/logger"
	"github.com/tinythreads/internal/models"
	"github.com/tinythreads/internal/repository"
	"github.com/tinythreads/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiCyan  = "\033[36m"
	ansiPink  = "\033[95m"
)

func main() {
	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	envErr := loadDotEnv()
	printStartupBanner()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if envErr != nil {
		logger.Warnw("dotenv_load_failed", "error", envErr)
	}

	if isWeakSecret(cfg.JWT.SecretKey) {
		if cfg.Server.Mode == "release" {
			stdLog.Fatalf("JWT secret 过弱或仍为默认值，请在生产环境中配置强随机密钥")
		}
		logger.Warnw("jwt_secret_weak", "mode", cfg.Server.Mode)
	}

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBOptions{
		Pool: models.DBPoolConfig{
			MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
			MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
			ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
			ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
		},
	}); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}

	defaultAdminUser := os.Getenv("APP_DEFAULT_ADMIN_USERNAME")
	defaultAdminPass := os.Getenv("APP_DEFAULT_ADMIN_PASSWORD")
	if cfg.Server.Mode == "release" && defaultAdminPass == "" {
		logger.Warnw("default_admin_skipped", "reason", "APP_DEFAULT_ADMIN_PASSWORD not set")
	} else {
		authService := service.NewAuthService(cfg, repository.NewAdminRepository(models.DB))
		if _, err := authService.EnsureDefaultAdmin(defaultAdminUser, defaultAdminPass); err != nil {
			logger.Warnw("default_admin_init_failed", "error", err)
		}
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

// loadDotEnv 非生产环境用 .env 覆盖进程环境变量，文件不存在时忽略
func loadDotEnv() error {
	if strings.EqualFold(strings.TrimSpace(os.Getenv("APP_ENV")), "production") {
		return nil
	}
	if err := godotenv.Overload(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func printStartupBanner() {
	fmt.Println(ansiPink + "╔══════════════════════════════════════════════════╗" + ansiReset)
	fmt.Println(ansiPink + "║            🧵 TinyThreads API 启动中             ║" + ansiReset)
	fmt.Println(ansiPink + "╚══════════════════════════════════════════════════╝" + ansiReset)
	fmt.Println(ansiCyan + ansiBold + "Kids clothing catalog · cart · inquiries" + ansiReset)
	fmt.Println(ansiDim + "----------------------------------------------------" + ansiReset)
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	return strings.Contains(normalized, "change-me") ||
		strings.Contains(normalized, "change-in-production") ||
		strings.Contains(normalized, "your-secret-key")
}
