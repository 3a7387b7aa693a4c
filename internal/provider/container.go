package provider

import (
	"github.com/marketgate/internal/authz"
	"github.com/marketgate/internal/cache"
	"github.com/marketgate/internal/config"
	"github.com/marketgate/internal/logger"
	"github.com/marketgate/internal/models"
	"github.com/marketgate/internal/queue"
	"github.com/marketgate/internal/repository"
	"github.com/marketgate/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo         repository.AdminRepository
	UserRepo          repository.UserRepository
	ProductRepo       repository.ProductRepository
	SellerProfileRepo repository.SellerProfileRepository
	ReconcileRunRepo  repository.ReconcileRunRepository
	AdminAuditRepo    repository.AdminAuditLogRepository

	// Services
	AuthzService         *authz.Service
	AuthService          *service.AuthService
	UserAuthService      *service.UserAuthService
	ProductService       *service.ProductService
	SellerProfileService *service.SellerProfileService
	ReconcileService     *service.ReconcileService
	AdminAuditService    *service.AdminAuditService
}

// NewContainer 初始化容器（使用全局数据库连接）
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

	c, err := Build(cfg, models.DB, queueClient)
	if err != nil {
		logger.Errorw("provider_init_failed", "error", err)
		panic(err)
	}
	return c
}

// Build 基于指定连接装配仓库与服务，不初始化 Redis
func Build(cfg *config.Config, db *gorm.DB, queueClient *queue.Client) (*Container, error) {
	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories(db)

	// 2. 初始化 Services
	if err := c.initServices(db); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.SellerProfileRepo = repository.NewSellerProfileRepository(db)
	c.ReconcileRunRepo = repository.NewReconcileRunRepository(db)
	c.AdminAuditRepo = repository.NewAdminAuditLogRepository(db)
}

func (c *Container) initServices(db *gorm.DB) error {
	authzService, err := authz.NewService(db)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		return err
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		return err
	}

	approvalCfg := c.Config.Approval
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.SellerProfileService = service.NewSellerProfileService(c.SellerProfileRepo, c.UserRepo, approvalCfg)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo, c.SellerProfileService)
	c.ProductService = service.NewProductService(c.ProductRepo, c.UserRepo)
	c.ReconcileService = service.NewReconcileService(
		c.ProductRepo,
		c.SellerProfileRepo,
		c.UserRepo,
		c.ReconcileRunRepo,
		c.SellerProfileService.Engine(),
		approvalCfg.ReconcileBatchSize,
		approvalCfg.ReconcileWorkers,
	)
	c.AdminAuditService = service.NewAdminAuditService(c.AdminAuditRepo)
	logger.Debugw("provider_services_ready",
		"activation_mode", approvalCfg.ActivationMode,
		"onboarding_reactivates_suspended", approvalCfg.OnboardingReactivatesSuspended,
	)
	return nil
}
