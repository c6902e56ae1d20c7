package constants

// 事件类型常量
const (
	EventTypePageview    = "pageview"
	EventTypeDownload    = "download"
	EventTypeDownloadAll = "download_all"
	EventTypeModalOpen   = "modal_open"
)

// DownloadEventTypes 统计口径中计入下载量的事件类型
var DownloadEventTypes = []string{
	EventTypeDownload,
	EventTypeDownloadAll,
}

// 资源分类常量
const (
	AssetCategoryWallpaper = "wallpaper"
	AssetCategoryEbook     = "ebook"
	AssetCategoryPrint     = "3d_print"
)

// 统计查询默认值
const (
	StatsDefaultWindowDays = 7
	StatsMaxWindowDays     = 365
	StatsTopCountries      = 30
	StatsTopCities         = 30
	StatsTopAssets         = 20
	StatsTopReferrers      = 20
	StatsRecentFeedLimit   = 100
)

// 队列名称常量
const (
	QueueDefault = "default"
)

// 异步任务类型常量
const (
	TaskVisitGeoEnrich = "visit:geo_enrich"
)
