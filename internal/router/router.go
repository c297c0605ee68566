package router

import (
	"time"

	"iamconsole/internal/database"
	"iamconsole/internal/handlers"
	"iamconsole/internal/middleware"
	"iamconsole/internal/services"
	"iamconsole/pkg/config"
	"iamconsole/pkg/response"

	"github.com/gin-gonic/gin"
)

// SetupRouter 设置路由
func SetupRouter() *gin.Engine {
	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS())

	// 注册路由
	registerRoutes(router)
	return router
}

// 注册所有路由
func registerRoutes(router *gin.Engine) {
	cfg := config.GetConfig()
	db := database.GetDB()
	locker := database.GetLocker()

	userService := services.NewUserService(db)
	auth := middleware.NewAuthMiddleware(userService)

	// API路由组
	api := router.Group("/api/v1")
	{
		// 健康检查接口
		api.GET("/health", healthCheck)
		api.GET("/ping", ping)

		// 认证路由
		authHandler := handlers.NewAuthHandler(userService)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)          // 用户登录
			authGroup.POST("/refresh", authHandler.RefreshToken) // 刷新Token
			authGroup.GET("/me", auth.RequireLogin(), authHandler.Me)
		}

		// 权限资源路由
		resourceHandler := handlers.NewResourceHandler(
			services.NewResourceService(db, locker, cfg.Permission.ForceEnableOnUpdate))
		resources := api.Group("/permission/resources")
		{
			resources.GET("", auth.RequireLogin(), resourceHandler.List)
			resources.GET("/:id", auth.RequireLogin(), resourceHandler.GetByID)
			resources.GET("/:id/actions", auth.RequireLogin(), resourceHandler.GetActions)
			resources.POST("", auth.RequireLogin(), auth.RequireAdmin(), middleware.RejectInPreview(), resourceHandler.Create)
			resources.PUT("/:id", auth.RequireLogin(), auth.RequireAdmin(), middleware.RejectInPreview(), resourceHandler.Update)
			resources.DELETE("/:id", auth.RequireLogin(), auth.RequireAdmin(), middleware.RejectInPreview(), resourceHandler.Delete)
		}

		// 授权策略路由
		policyHandler := handlers.NewPolicyHandler(services.NewPolicyService(db, locker))
		policies := api.Group("/permission/policies")
		{
			policies.GET("", auth.RequireLogin(), policyHandler.List)
			policies.GET("/:id", auth.RequireLogin(), policyHandler.GetByID)
			policies.POST("", auth.RequireLogin(), auth.RequireAdmin(), middleware.RejectInPreview(), policyHandler.Create)
			policies.PUT("/:id", auth.RequireLogin(), auth.RequireAdmin(), middleware.RejectInPreview(), policyHandler.Update)
			policies.DELETE("/:id", auth.RequireLogin(), auth.RequireAdmin(), middleware.RejectInPreview(), policyHandler.Delete)
		}

		// 角色路由
		roleHandler := handlers.NewRoleHandler(services.NewRoleService(db))
		roles := api.Group("/roles")
		{
			roles.GET("", auth.RequireLogin(), roleHandler.List)
			roles.GET("/:id", auth.RequireLogin(), roleHandler.GetByID)
			roles.POST("", auth.RequireLogin(), auth.RequireAdmin(), middleware.RejectInPreview(), roleHandler.Create)
		}

		// 审计日志路由
		auditHandler := handlers.NewAuditHandler(services.NewAuditService(db))
		api.GET("/audit-logs", auth.RequireLogin(), auth.RequireAdmin(), auditHandler.List)
	}
}

// healthCheck 健康检查
func healthCheck(c *gin.Context) {
	response.Success(c, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// ping 连通性测试
func ping(c *gin.Context) {
	response.Success(c, "pong")
}
