package provider

import (
	"time"

	"github.com/tinythreads/internal/authz"
	"github.com/tinythreads/internal/cache"
	"github.com/tinythreads/internal/cart"
	"github.com/tinythreads/internal/config"
	"github.com/tinythreads/internal/logger"
	"github.com/tinythreads/internal/models"
	"github.com/tinythreads/internal/queue"
	"github.com/tinythreads/internal/repository"
	"github.com/tinythreads/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	CartSlots   service.CartSlotProvider

	// Repositories
	AdminRepo     repository.AdminRepository
	CategoryRepo  repository.CategoryRepository
	ProductRepo   repository.ProductRepository
	InquiryRepo   repository.InquiryRepository
	DashboardRepo repository.DashboardRepository

	// Services
	AuthzService     *authz.Service
	AuthService      *service.AuthService
	EmailService     *service.EmailService
	CaptchaService   *service.CaptchaService
	UploadService    *service.UploadService
	CategoryService  *service.CategoryService
	ProductService   *service.ProductService
	CartService      *service.CartService
	InquiryService   *service.InquiryService
	DashboardService *service.DashboardService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		CartSlots:   newCartSlots(cfg.Cart),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

// newCartSlots Redis 可用时购物车跨实例共享，否则退回进程内存
func newCartSlots(cfg config.CartConfig) service.CartSlotProvider {
	if client := cache.Client(); client != nil {
		ttl := time.Duration(cfg.TTLHours) * time.Hour
		return cache.NewCartSlots(client, cache.Prefix(), ttl)
	}
	logger.Infow("provider_cart_slots_memory")
	return cart.NewMemorySlots()
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.InquiryRepo = repository.NewInquiryRepository(db)
	c.DashboardRepo = repository.NewDashboardRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	store := c.Config.Store
	c.EmailService = service.NewEmailService(&c.Config.Email, store)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UploadService = service.NewUploadService(&c.Config.Upload)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.CategoryService, store)
	c.CartService = service.NewCartService(c.CartSlots, c.ProductService, store)
	c.InquiryService = service.NewInquiryService(c.InquiryRepo, c.inquiryQueue(), store)
	c.DashboardService = service.NewDashboardService(c.DashboardRepo, c.InquiryRepo, store)
}

// inquiryQueue 队列未启用时不投递通知
func (c *Container) inquiryQueue() service.InquiryTaskQueue {
	if c.QueueClient == nil {
		return nil
	}
	return c.QueueClient
}
