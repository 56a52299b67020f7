package router

import (
	"net/http"
	"time"

	"moodjournal/api"
	"moodjournal/config"
	_ "moodjournal/docs"
	"moodjournal/logger"
	"moodjournal/middleware"
	"moodjournal/repository"
	"moodjournal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, db *gorm.DB, completer service.Completer, log *logger.Logger) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	chatRepo := repository.NewChatRepository(db)
	conversation := service.NewConversationService(chatRepo, completer, service.NewMoodClassifier(service.DefaultLexicon()), cfg.Chat, log)
	chatHandler := api.NewChatHandler(conversation, service.NewMoodAggregator(chatRepo), service.NewHistoryPaginator(chatRepo))
	exportHandler := api.NewExportHandler(chatRepo)
	authHandler := api.NewAuthHandler(cfg)

	apiGroup := r.Group("/api")
	{
		// 认证相关路由（无需登录）
		auth := apiGroup.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login",
				middleware.LoginRateLimit(cfg.RateLimit.LoginAttempts, time.Duration(cfg.RateLimit.LoginWindowSeconds)*time.Second),
				authHandler.Login)
			auth.GET("/profile", middleware.JWTAuth(), authHandler.GetProfile)
		}

		// 需要 JWT 认证的路由
		chat := apiGroup.Group("/chat")
		chat.Use(middleware.JWTAuth())
		{
			chat.POST("/send",
				middleware.SendRateLimit(cfg.RateLimit.SendAttempts, time.Duration(cfg.RateLimit.SendWindowSeconds)*time.Second),
				chatHandler.Send)
			chat.GET("/dashboard", chatHandler.Dashboard)
			chat.GET("/mood-stats", chatHandler.MoodStats)
			chat.GET("/history", chatHandler.History)
			chat.DELETE("/chat/:chatId", chatHandler.DeleteChat)
			chat.DELETE("/delhistory", chatHandler.DeleteHistory)
			chat.POST("/analyze", chatHandler.Analyze)

			// 导出相关
			export := chat.Group("/export")
			{
				export.GET("/csv", exportHandler.ExportCSV)
				export.GET("/json", exportHandler.ExportJSON)
				export.GET("/excel", exportHandler.ExportExcel)
			}
		}
	}

	return r
}

// CORSMiddleware CORS 跨域中间件，认证使用 Authorization 头，不依赖 Cookie
func CORSMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:    []string{"Authorization", "Content-Type", "Accept", "Origin", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:   []string{"Content-Disposition", middleware.RequestIDHeader},
		MaxAge:          12 * time.Hour,
	})
}
