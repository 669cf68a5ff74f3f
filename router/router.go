package router

import (
	"time"

	"budgetbite/analytics"
	"budgetbite/api"
	"budgetbite/config"
	"budgetbite/database"
	_ "budgetbite/docs"
	"budgetbite/logger"
	"budgetbite/metrics"
	"budgetbite/middleware"
	"budgetbite/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	authRateLimit  = 10
	authRateWindow = time.Minute
)

// Dependencies 外部依赖，均可为空
type Dependencies struct {
	Identity    service.IdentityProvider
	ReportCache analytics.ReportCache
	Notifier    api.AlertNotifier
}

// newAggregator 基于数据库流水的统计器，配置了缓存时包一层报表缓存
func newAggregator(cfg *config.Config, deps Dependencies) analytics.Aggregator {
	var agg analytics.Aggregator = analytics.NewAggregator(database.NewLedger(database.DB))
	if deps.ReportCache != nil {
		agg = analytics.NewCachedAggregator(agg, deps.ReportCache, cfg.Analytics.CacheTTL)
	}
	return agg
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(logger.GinLogger(), gin.Recovery(), metrics.GinMiddleware())
	r.Use(CORSMiddleware())

	agg := newAggregator(cfg, deps)

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", metrics.Handler())

	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录）
		authHandler := api.NewAuthHandler(cfg, deps.Identity, agg)
		auth := v1.Group("/auth")
		auth.Use(middleware.LoginRateLimit(authRateLimit, authRateWindow))
		{
			auth.GET("/google/login", authHandler.GoogleLogin)
			auth.GET("/google/callback", authHandler.GoogleCallback)
			auth.POST("/demo", authHandler.DemoLogin)
		}

		expenseHandler := api.NewExpenseHandler(agg, deps.Notifier)
		v1.GET("/expenses/categories", expenseHandler.Categories)

		// 需要 JWT 认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			authorized.GET("/auth/profile", authHandler.GetProfile)
			authorized.PUT("/auth/profile", authHandler.UpdateProfile)
			authorized.POST("/auth/onboarding", authHandler.Onboarding)
			authorized.DELETE("/auth/account", authHandler.DeleteAccount)

			dashboardHandler := api.NewDashboardHandler(agg)
			authorized.GET("/dashboard", dashboardHandler.Overview)
			authorized.GET("/analytics", dashboardHandler.Report)

			expenses := authorized.Group("/expenses")
			{
				expenses.POST("", expenseHandler.Create)
				expenses.POST("/quick", expenseHandler.QuickAdd)
				expenses.GET("", expenseHandler.List)
				expenses.DELETE("/:id", expenseHandler.Delete)
			}

			budgetHandler := api.NewBudgetHandler(agg)
			budget := authorized.Group("/budget")
			{
				budget.GET("", budgetHandler.Get)
				budget.POST("", budgetHandler.Setup)
				budget.GET("/categories", budgetHandler.CategoryData)
			}

			mealHandler := api.NewMealHandler(agg)
			meals := authorized.Group("/meals")
			{
				meals.GET("/today", mealHandler.Today)
				meals.GET("/week", mealHandler.Week)
				meals.GET("/suggestions", mealHandler.Suggestions)
				meals.POST("", mealHandler.Add)
				meals.POST("/auto-plan", mealHandler.AutoPlan)
				meals.POST("/:id/complete", mealHandler.Complete)
				meals.DELETE("/:id", mealHandler.Delete)
			}

			gamificationHandler := api.NewGamificationHandler(agg, deps.Notifier)
			authorized.GET("/gamification", gamificationHandler.Board)
			authorized.POST("/gamification/badges", gamificationHandler.AwardBadge)
			goals := authorized.Group("/goals")
			{
				goals.GET("", gamificationHandler.Goals)
				goals.POST("", gamificationHandler.CreateGoal)
				goals.POST("/:id/contribute", gamificationHandler.Contribute)
				goals.DELETE("/:id", gamificationHandler.DeleteGoal)
			}

			splitHandler := api.NewSplitHandler()
			splits := authorized.Group("/splits")
			{
				splits.GET("", splitHandler.List)
				splits.POST("", splitHandler.Create)
				splits.GET("/:id", splitHandler.Get)
				splits.POST("/:id/settle/:idx", splitHandler.Settle)
				splits.DELETE("/:id", splitHandler.Delete)
			}

			alertHandler := api.NewAlertHandler()
			alerts := authorized.Group("/alerts")
			{
				alerts.GET("", alertHandler.List)
				alerts.GET("/unread-count", alertHandler.UnreadCount)
				alerts.PUT("/read-all", alertHandler.MarkAllRead)
				alerts.PUT("/:id/read", alertHandler.MarkRead)
			}

			exportHandler := api.NewExportHandler()
			export := authorized.Group("/export")
			{
				export.GET("/csv", exportHandler.ExportCSV)
				export.GET("/json", exportHandler.ExportJSON)
				export.GET("/xlsx", exportHandler.ExportXLSX)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
