package provider

import (
	"github.com/maya-downloads/api/internal/cache"
	"github.com/maya-downloads/api/internal/config"
	"github.com/maya-downloads/api/internal/geoip"
	"github.com/maya-downloads/api/internal/logger"
	"github.com/maya-downloads/api/internal/models"
	"github.com/maya-downloads/api/internal/queue"
	"github.com/maya-downloads/api/internal/repository"
	"github.com/maya-downloads/api/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	GeoLocator  *geoip.Locator

	// Repositories
	AnalyticsRepo repository.AnalyticsRepository
	AssetRepo     repository.AssetRepository
	AdminRepo     repository.AdminRepository

	// Services
	TrackingService *service.TrackingService
	StatsService    *service.StatsService
	AssetService    *service.AssetService
	AuthService     *service.AuthService
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

	// 初始化 GeoIP 定位器（可选，mmdb 打不开时退化为不定位）
	var locator *geoip.Locator
	if cfg.GeoIP.Enabled {
		loc, err := geoip.NewLocator(cfg.GeoIP.Path)
		if err != nil {
			logger.Warnw("provider_init_geoip_failed", "path", cfg.GeoIP.Path, "error", err)
		} else {
			locator = loc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		GeoLocator:  locator,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	c.AnalyticsRepo = repository.NewAnalyticsRepository(models.DefaultStore)
	c.AssetRepo = repository.NewAssetRepository(models.DB)
	c.AdminRepo = repository.NewAdminRepository(models.DB)
}

func (c *Container) initServices() {
	c.TrackingService = service.NewTrackingService(c.AnalyticsRepo, c.GeoLocator, c.QueueClient)
	c.StatsService = service.NewStatsService(c.AnalyticsRepo, c.Config.Tracking)
	c.AssetService = service.NewAssetService(c.AssetRepo, c.TrackingService)
	c.AuthService = service.NewAuthService(c.AdminRepo, c.Config.JWT)
}
