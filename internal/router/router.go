package router

import (
	"fmt"
	"strings"

	"github.com/maya-downloads/api/internal/cache"
	"github.com/maya-downloads/api/internal/config"
	adminhandlers "github.com/maya-downloads/api/internal/http/handlers/admin"
	publichandlers "github.com/maya-downloads/api/internal/http/handlers/public"
	"github.com/maya-downloads/api/internal/logger"
	"github.com/maya-downloads/api/internal/provider"

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

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "maya"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxRequests,
	}
	beaconRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:beacon", redisPrefix),
		WindowSeconds: cfg.Security.BeaconRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.BeaconRateLimit.MaxRequests,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 埋点上报接口
		track := apiV1.Group("/track")
		track.Use(RateLimitMiddleware(redisClient, beaconRule, KeyByIP))
		{
			track.POST("/visit", publicHandler.TrackVisit)
			track.POST("/event", publicHandler.TrackEvent)
		}

		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/assets", publicHandler.GetAssets)
			public.GET("/assets/:slug", publicHandler.GetAssetBySlug)
			public.POST("/assets/:slug/download", publicHandler.DownloadAsset)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIP), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo))
			{
				authorized.GET("/stats", adminHandler.GetStats)
				authorized.PUT("/password", adminHandler.UpdateAdminPassword)

				// 资源管理
				authorized.GET("/assets", adminHandler.GetAdminAssets)
				authorized.GET("/assets/:id", adminHandler.GetAdminAsset)
				authorized.POST("/assets", adminHandler.CreateAsset)
				authorized.PUT("/assets/:id", adminHandler.UpdateAsset)
				authorized.DELETE("/assets/:id", adminHandler.DeleteAsset)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
