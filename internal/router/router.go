package router

import (
	"net/http"
	"strings"

	"github.com/marketgate/internal/cache"
	"github.com/marketgate/internal/config"
	adminhandlers "github.com/marketgate/internal/http/handlers/admin"
	publichandlers "github.com/marketgate/internal/http/handlers/public"
	"github.com/marketgate/internal/http/response"
	"github.com/marketgate/internal/logger"
	"github.com/marketgate/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisClient := cache.Client()
	loginRule, adminLoginRule := loginRateLimitRules(cfg)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/products", publicHandler.GetProducts)
			public.GET("/products/:slug", publicHandler.GetProductBySlug)
			public.GET("/shops/:slug", publicHandler.GetShop)
			public.GET("/shops/:slug/products", publicHandler.GetShopProducts)
		}

		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", RateLimitMiddleware(redisClient, loginRule, KeyByIP), publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetCurrentUser)
			user.POST("/me/apply-seller", publicHandler.ApplyToSell)

			// 卖家店铺与商品
			user.GET("/seller/profile", publicHandler.GetSellerProfile)
			user.PUT("/seller/profile", publicHandler.UpdateSellerProfile)
			user.POST("/seller/onboarding/complete", publicHandler.CompleteOnboarding)
			user.GET("/seller/products", publicHandler.GetSellerProducts)
			user.POST("/seller/products", publicHandler.CreateSellerProduct)
			user.PUT("/seller/products/:id", publicHandler.UpdateSellerProduct)
			user.DELETE("/seller/products/:id", publicHandler.DeleteSellerProduct)
			user.GET("/seller/shop/preview", publicHandler.GetShopPreview)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIPAndJSONField("username")), adminHandler.AdminLogin)

			// 仅需登录的接口
			self := admin.Group("")
			self.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo))
			{
				self.GET("/me", adminHandler.GetAdminMe)
				self.PUT("/password", adminHandler.UpdateAdminPassword)
			}

			// 需要 RBAC 授权的接口
			authorized := admin.Group("")
			authorized.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				// 商品审核
				authorized.GET("/products", adminHandler.GetAdminProducts)
				authorized.GET("/products/:id", adminHandler.GetAdminProduct)
				authorized.POST("/products/:id/approve", adminHandler.ApproveProduct)
				authorized.POST("/products/:id/unapprove", adminHandler.UnapproveProduct)
				authorized.PATCH("/products/:id/status", adminHandler.UpdateProductStatus)

				// 卖家店铺
				authorized.GET("/sellers", adminHandler.GetAdminSellers)
				authorized.GET("/sellers/:user_id", adminHandler.GetAdminSeller)
				authorized.PATCH("/sellers/:user_id/status", adminHandler.UpdateSellerStatus)
				authorized.GET("/sellers/:user_id/notes", adminHandler.GetSellerStatusNotes)

				// 用户账号
				authorized.GET("/users", adminHandler.GetAdminUsers)
				authorized.PATCH("/users/:id/status", adminHandler.UpdateUserStatus)

				// 数据修复
				authorized.POST("/maintenance/reconcile", adminHandler.RunReconcile)
				authorized.GET("/maintenance/reconcile/runs", adminHandler.ListReconcileRuns)

				// 审计日志
				authorized.GET("/audit-logs", adminHandler.ListAuditLogs)

				// 权限管理
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
				authorized.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
				authorized.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
				authorized.GET("/authz/admins/:id/roles", adminHandler.GetAuthzAdminRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAuthzAdminRoles)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
			}
		}
	}

	r.GET("/health", healthCheck)

	return r
}

// loginRateLimitRules 用户登录与管理员登录共用阈值，计数键分开
func loginRateLimitRules(cfg *config.Config) (RateLimitRule, RateLimitRule) {
	prefix := strings.TrimSpace(cfg.Redis.Prefix)
	if prefix == "" {
		prefix = "mg"
	}
	limit := cfg.Security.LoginRateLimit
	user := RateLimitRule{
		Prefix:        prefix + ":rate:login",
		WindowSeconds: limit.WindowSeconds,
		MaxRequests:   limit.MaxAttempts,
		BlockSeconds:  limit.BlockSeconds,
		Message:       "too many login attempts",
	}
	admin := user
	admin.Prefix = prefix + ":rate:admin_login"
	return user, admin
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"redis":  cache.Enabled(),
	})
}
