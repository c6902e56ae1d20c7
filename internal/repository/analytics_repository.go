package repository

import (
	"context"
	"strings"
	"time"

	"github.com/maya-downloads/api/internal/constants"
	"github.com/maya-downloads/api/internal/geoip"
	"github.com/maya-downloads/api/internal/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnalyticsRepository 访问/事件分析数据访问接口
// 说明：写入为 fire-and-forget 单行插入，无内部重试与排队；
// 统计为固定的一组聚合查询，两个后端返回完全相同的结构。
type AnalyticsRepository interface {
	InsertVisit(visit *models.Visit) error
	InsertEvent(event *models.Event) error
	UpdateVisitGeo(visitID string, location *geoip.Location) error
	GetStats(ctx context.Context, days float64) (*StatsSummary, error)
}

// PageCount 按页面聚合的访问数
type PageCount struct {
	Page string `json:"page"`
	N    int64  `json:"n"`
}

// CountryCount 按国家聚合的访问数
type CountryCount struct {
	Country string `json:"country"`
	N       int64  `json:"n"`
}

// CityCount 按城市聚合的访问数
// 说明：带上国家消除同名城市歧义。
type CityCount struct {
	City    string `json:"city"`
	Country string `json:"country"`
	N       int64  `json:"n"`
}

// SourceCount 按 UTM 组合聚合的访问数
type SourceCount struct {
	UtmSource   string `json:"utm_source"`
	UtmCampaign string `json:"utm_campaign"`
	UtmTerm     string `json:"utm_term"`
	N           int64  `json:"n"`
}

// DeviceCount 按设备类型聚合的访问数
type DeviceCount struct {
	Device string `json:"device"`
	N      int64  `json:"n"`
}

// BrowserCount 按浏览器聚合的访问数
type BrowserCount struct {
	Browser string `json:"browser"`
	N       int64  `json:"n"`
}

// OSCount 按操作系统聚合的访问数
type OSCount struct {
	OS string `json:"os"`
	N  int64  `json:"n"`
}

// AssetDownloadCount 按资源聚合的下载数
type AssetDownloadCount struct {
	AssetID       string `json:"asset_id"`
	AssetTitle    string `json:"asset_title"`
	AssetCategory string `json:"asset_category"`
	N             int64  `json:"n"`
}

// ReferrerCount 按来源地址聚合的访问数
type ReferrerCount struct {
	Referrer string `json:"referrer"`
	N        int64  `json:"n"`
}

// RecentDownload 最近下载记录
// 说明：下载事件按 session_id 左连接访问记录，补全地理、
// 设备与归因上下文；同会话多次访问会放大行数，按原样接受。
type RecentDownload struct {
	EventID       string  `json:"event_id"`
	SessionID     *string `json:"session_id"`
	Timestamp     string  `json:"timestamp"`
	EventType     *string `json:"event_type"`
	AssetID       *string `json:"asset_id"`
	AssetTitle    *string `json:"asset_title"`
	AssetCategory *string `json:"asset_category"`
	Page          *string `json:"page"`
	UtmSource     *string `json:"utm_source"`
	UtmCampaign   *string `json:"utm_campaign"`
	UtmTerm       *string `json:"utm_term"`
	Country       *string `json:"country"`
	Region        *string `json:"region"`
	City          *string `json:"city"`
	Device        *string `json:"device"`
	Browser       *string `json:"browser"`
	OS            *string `json:"os"`
	Referrer      *string `json:"referrer"`
}

// StatsSummary 统计摘要
// 说明：前十个维度共享同一个窗口下界；recent_visits 与
// recent_downloads 是不受窗口限制的实时流，两者语义刻意不同。
type StatsSummary struct {
	Visits          int64                `json:"visits"`
	Downloads       int64                `json:"downloads"`
	UniqueSessions  int64                `json:"unique_sessions"`
	ByPage          []PageCount          `json:"by_page"`
	ByCountry       []CountryCount       `json:"by_country"`
	ByCity          []CityCount          `json:"by_city"`
	BySource        []SourceCount        `json:"by_source"`
	ByDevice        []DeviceCount        `json:"by_device"`
	ByBrowser       []BrowserCount       `json:"by_browser"`
	ByOS            []OSCount            `json:"by_os"`
	TopAssets       []AssetDownloadCount `json:"top_assets"`
	ByReferrer      []ReferrerCount      `json:"by_referrer"`
	RecentVisits    []models.Visit       `json:"recent_visits"`
	RecentDownloads []RecentDownload     `json:"recent_downloads"`
}

// GormAnalyticsRepository GORM 分析仓库实现
type GormAnalyticsRepository struct {
	store *models.RecordStore
}

// NewAnalyticsRepository 创建分析仓库
func NewAnalyticsRepository(store *models.RecordStore) *GormAnalyticsRepository {
	return &GormAnalyticsRepository{store: store}
}

// InsertVisit 写入一条访问记录
// visit_id 缺省时生成新标识；重复 visit_id 静默忽略，不报错。
func (r *GormAnalyticsRepository) InsertVisit(visit *models.Visit) error {
	if visit == nil {
		return nil
	}
	if err := r.store.EnsureSchema(); err != nil {
		return err
	}
	if strings.TrimSpace(visit.VisitID) == "" {
		visit.VisitID = uuid.NewString()
	}
	if visit.Timestamp == "" {
		visit.Timestamp = models.FormatTimestamp(time.Now())
	}
	return r.store.DB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "visit_id"}},
		DoNothing: true,
	}).Create(visit).Error
}

// InsertEvent 写入一条事件记录
// 事件不做去重，每条都是独立标识。
func (r *GormAnalyticsRepository) InsertEvent(event *models.Event) error {
	if event == nil {
		return nil
	}
	if err := r.store.EnsureSchema(); err != nil {
		return err
	}
	if strings.TrimSpace(event.EventID) == "" {
		event.EventID = uuid.NewString()
	}
	if event.Timestamp == "" {
		event.Timestamp = models.FormatTimestamp(time.Now())
	}
	return r.store.DB().Create(event).Error
}

// UpdateVisitGeo 按 visit_id 回填地理字段（异步回填任务使用）
func (r *GormAnalyticsRepository) UpdateVisitGeo(visitID string, location *geoip.Location) error {
	if location == nil || strings.TrimSpace(visitID) == "" {
		return nil
	}
	if err := r.store.EnsureSchema(); err != nil {
		return err
	}
	updates := map[string]interface{}{}
	if location.Country != "" {
		updates["country"] = location.Country
	}
	if location.Region != "" {
		updates["region"] = location.Region
	}
	if location.City != "" {
		updates["city"] = location.City
	}
	if location.Timezone != "" {
		updates["timezone"] = location.Timezone
	}
	if location.Latitude != 0 || location.Longitude != 0 {
		updates["latitude"] = location.Latitude
		updates["longitude"] = location.Longitude
	}
	if len(updates) == 0 {
		return nil
	}
	return r.store.DB().Model(&models.Visit{}).
		Where("visit_id = ?", visitID).
		Updates(updates).Error
}

// GetStats 计算统计摘要
// 网络后端并发执行全部子查询，任一失败整体失败；嵌入式后端顺序执行。
// 子查询之间不包事务，允许观察到略有差异的快照。
func (r *GormAnalyticsRepository) GetStats(ctx context.Context, days float64) (*StatsSummary, error) {
	if err := r.store.EnsureSchema(); err != nil {
		return nil, err
	}

	cutoff := windowCutoff(time.Now(), days)
	summary := &StatsSummary{}
	queries := r.statsQueries(summary, cutoff)

	if r.store.Backend() == models.BackendPostgres {
		g, gctx := errgroup.WithContext(ctx)
		for _, query := range queries {
			g.Go(func() error {
				return query(gctx)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return summary, nil
	}

	for _, query := range queries {
		if err := query(ctx); err != nil {
			return nil, err
		}
	}
	return summary, nil
}

// windowCutoff 计算窗口下界
// 用与存储一致的 ISO 布局输出，字符串比较即时间比较。
func windowCutoff(now time.Time, days float64) string {
	offset := time.Duration(days * 86400 * float64(time.Second))
	return models.FormatTimestamp(now.Add(-offset))
}

func (r *GormAnalyticsRepository) statsQueries(summary *StatsSummary, cutoff string) []func(context.Context) error {
	db := r.store.DB()
	visits := func(ctx context.Context) *gorm.DB {
		return db.WithContext(ctx).Model(&models.Visit{}).Where("timestamp >= ?", cutoff)
	}

	return []func(context.Context) error{
		func(ctx context.Context) error {
			return visits(ctx).Count(&summary.Visits).Error
		},
		func(ctx context.Context) error {
			return db.WithContext(ctx).Model(&models.Event{}).
				Where("timestamp >= ? AND event_type IN ?", cutoff, constants.DownloadEventTypes).
				Count(&summary.Downloads).Error
		},
		func(ctx context.Context) error {
			return visits(ctx).Distinct("session_id").Count(&summary.UniqueSessions).Error
		},
		func(ctx context.Context) error {
			return visits(ctx).
				Select("COALESCE(page, '') AS page, COUNT(*) AS n").
				Group("page").
				Order("n DESC").
				Scan(&summary.ByPage).Error
		},
		func(ctx context.Context) error {
			return visits(ctx).
				Where("country IS NOT NULL AND country <> ''").
				Select("country, COUNT(*) AS n").
				Group("country").
				Order("n DESC").
				Limit(constants.StatsTopCountries).
				Scan(&summary.ByCountry).Error
		},
		func(ctx context.Context) error {
			return visits(ctx).
				Where("city IS NOT NULL AND city <> ''").
				Select("city, COALESCE(country, '') AS country, COUNT(*) AS n").
				Group("city, COALESCE(country, '')").
				Order("n DESC").
				Limit(constants.StatsTopCities).
				Scan(&summary.ByCity).Error
		},
		func(ctx context.Context) error {
			return visits(ctx).
				Where("utm_source IS NOT NULL AND utm_source <> ''").
				Select("utm_source, COALESCE(utm_campaign, '') AS utm_campaign, COALESCE(utm_term, '') AS utm_term, COUNT(*) AS n").
				// 分组键与 SELECT 的 COALESCE 保持一致，NULL 与空串归并为同一行
				Group("utm_source, COALESCE(utm_campaign, ''), COALESCE(utm_term, '')").
				Order("n DESC").
				Scan(&summary.BySource).Error
		},
		func(ctx context.Context) error {
			return visits(ctx).
				Where("device IS NOT NULL AND device <> ''").
				Select("device, COUNT(*) AS n").
				Group("device").
				Order("n DESC").
				Scan(&summary.ByDevice).Error
		},
		func(ctx context.Context) error {
			return visits(ctx).
				Where("browser IS NOT NULL AND browser <> ''").
				Select("browser, COUNT(*) AS n").
				Group("browser").
				Order("n DESC").
				Scan(&summary.ByBrowser).Error
		},
		func(ctx context.Context) error {
			return visits(ctx).
				Where("os IS NOT NULL AND os <> ''").
				Select("os, COUNT(*) AS n").
				Group("os").
				Order("n DESC").
				Scan(&summary.ByOS).Error
		},
		func(ctx context.Context) error {
			return db.WithContext(ctx).Model(&models.Event{}).
				Where("timestamp >= ? AND event_type = ? AND asset_id IS NOT NULL AND asset_id <> ''", cutoff, constants.EventTypeDownload).
				Select("asset_id, COALESCE(asset_title, '') AS asset_title, COALESCE(asset_category, '') AS asset_category, COUNT(*) AS n").
				Group("asset_id, asset_title, asset_category").
				Order("n DESC").
				Limit(constants.StatsTopAssets).
				Scan(&summary.TopAssets).Error
		},
		func(ctx context.Context) error {
			return visits(ctx).
				Where("referrer IS NOT NULL AND referrer <> ''").
				Select("referrer, COUNT(*) AS n").
				Group("referrer").
				Order("n DESC").
				Limit(constants.StatsTopReferrers).
				Scan(&summary.ByReferrer).Error
		},
		// 实时流：不受窗口限制
		func(ctx context.Context) error {
			return db.WithContext(ctx).Model(&models.Visit{}).
				Order("timestamp DESC").
				Limit(constants.StatsRecentFeedLimit).
				Find(&summary.RecentVisits).Error
		},
		func(ctx context.Context) error {
			return db.WithContext(ctx).Raw(`
SELECT e.event_id, e.session_id, e.timestamp, e.event_type,
       e.asset_id, e.asset_title, e.asset_category, e.page,
       e.utm_source, e.utm_campaign, e.utm_term,
       v.country, v.region, v.city, v.device, v.browser, v.os, v.referrer
FROM events e
LEFT JOIN visits v ON v.session_id = e.session_id
WHERE e.event_type IN ?
ORDER BY e.timestamp DESC
LIMIT ?`, constants.DownloadEventTypes, constants.StatsRecentFeedLimit).
				Scan(&summary.RecentDownloads).Error
		},
	}
}
