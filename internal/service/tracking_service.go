package service

import (
	"strings"

	"github.com/maya-downloads/api/internal/geoip"
	"github.com/maya-downloads/api/internal/logger"
	"github.com/maya-downloads/api/internal/models"
	"github.com/maya-downloads/api/internal/queue"
	"github.com/maya-downloads/api/internal/repository"

	"github.com/google/uuid"
	"github.com/mileusna/useragent"
)

// TrackingService 埋点服务
// 说明：把前端上报的松散载荷整理成访问/事件行再交给仓库写入。
// 写入失败原样上抛，不做重试；地理信息回填在队列可用时走异步，
// 否则在写入前内联完成。
type TrackingService struct {
	repo        repository.AnalyticsRepository
	locator     *geoip.Locator
	queueClient *queue.Client
}

// NewTrackingService 创建埋点服务
func NewTrackingService(repo repository.AnalyticsRepository, locator *geoip.Locator, queueClient *queue.Client) *TrackingService {
	return &TrackingService{
		repo:        repo,
		locator:     locator,
		queueClient: queueClient,
	}
}

// RecordVisitInput 访问上报载荷
type RecordVisitInput struct {
	SessionID      string `json:"session_id"`
	Page           string `json:"page"`
	Referrer       string `json:"referrer"`
	UtmSource      string `json:"utm_source"`
	UtmMedium      string `json:"utm_medium"`
	UtmCampaign    string `json:"utm_campaign"`
	UtmContent     string `json:"utm_content"`
	UtmTerm        string `json:"utm_term"`
	ScreenWidth    int    `json:"screen_width"`
	ScreenHeight   int    `json:"screen_height"`
	Language       string `json:"language"`
	ClientTimezone string `json:"client_timezone"`
}

// RecordEventInput 事件上报载荷
type RecordEventInput struct {
	SessionID     string `json:"session_id"`
	EventType     string `json:"event_type"`
	AssetID       string `json:"asset_id"`
	AssetTitle    string `json:"asset_title"`
	AssetCategory string `json:"asset_category"`
	Page          string `json:"page"`
	UtmSource     string `json:"utm_source"`
	UtmCampaign   string `json:"utm_campaign"`
	UtmTerm       string `json:"utm_term"`
}

// RecordVisit 记录一次访问
// ip 与 ua 取自请求本身，其余字段来自上报载荷；缺失字段存 NULL。
func (s *TrackingService) RecordVisit(input RecordVisitInput, ip, rawUA string) error {
	if s == nil || s.repo == nil {
		return nil
	}

	visit := &models.Visit{
		VisitID:        uuid.NewString(),
		SessionID:      optString(input.SessionID),
		Page:           optString(input.Page),
		Referrer:       optString(input.Referrer),
		UtmSource:      optString(input.UtmSource),
		UtmMedium:      optString(input.UtmMedium),
		UtmCampaign:    optString(input.UtmCampaign),
		UtmContent:     optString(input.UtmContent),
		UtmTerm:        optString(input.UtmTerm),
		IP:             optString(ip),
		ScreenWidth:    optInt(input.ScreenWidth),
		ScreenHeight:   optInt(input.ScreenHeight),
		Language:       optString(input.Language),
		ClientTimezone: optString(input.ClientTimezone),
	}
	applyUserAgent(visit, rawUA)

	async := s.queueClient.Enabled() && strings.TrimSpace(ip) != ""
	if !async {
		s.applyGeo(visit, ip)
	}

	if err := s.repo.InsertVisit(visit); err != nil {
		return err
	}

	if async {
		if err := s.queueClient.EnqueueVisitGeoEnrich(queue.VisitGeoEnrichPayload{
			VisitID: visit.VisitID,
			IP:      ip,
		}); err != nil {
			// 回填失败不影响访问记录本身
			logger.Warnw("tracking_enqueue_geo_enrich_failed", "visit_id", visit.VisitID, "error", err)
		}
	}
	return nil
}

// RecordEvent 记录一次用户行为事件
func (s *TrackingService) RecordEvent(input RecordEventInput) error {
	if s == nil || s.repo == nil {
		return nil
	}
	return s.repo.InsertEvent(&models.Event{
		SessionID:     optString(input.SessionID),
		EventType:     optString(input.EventType),
		AssetID:       optString(input.AssetID),
		AssetTitle:    optString(input.AssetTitle),
		AssetCategory: optString(input.AssetCategory),
		Page:          optString(input.Page),
		UtmSource:     optString(input.UtmSource),
		UtmCampaign:   optString(input.UtmCampaign),
		UtmTerm:       optString(input.UtmTerm),
	})
}

// EnrichVisitGeo 回填访问记录的地理信息（worker 调用）
func (s *TrackingService) EnrichVisitGeo(visitID, ip string) error {
	if s == nil || s.repo == nil || s.locator == nil {
		return nil
	}
	location, err := s.locator.Lookup(ip)
	if err != nil {
		return err
	}
	return s.repo.UpdateVisitGeo(visitID, location)
}

// applyGeo 内联查询地理信息
func (s *TrackingService) applyGeo(visit *models.Visit, ip string) {
	if s.locator == nil || strings.TrimSpace(ip) == "" {
		return
	}
	location, err := s.locator.Lookup(ip)
	if err != nil {
		logger.Debugw("tracking_geo_lookup_failed", "ip", ip, "error", err)
		return
	}
	visit.Country = optString(location.Country)
	visit.Region = optString(location.Region)
	visit.City = optString(location.City)
	visit.Timezone = optString(location.Timezone)
	if location.Latitude != 0 || location.Longitude != 0 {
		visit.Latitude = &location.Latitude
		visit.Longitude = &location.Longitude
	}
}

// applyUserAgent 解析 UA 填充浏览器/系统/设备字段
func applyUserAgent(visit *models.Visit, rawUA string) {
	ua := strings.TrimSpace(rawUA)
	if ua == "" {
		return
	}
	visit.UserAgent = &ua

	parsed := useragent.Parse(ua)
	visit.Browser = optString(parsed.Name)
	visit.BrowserVersion = optString(parsed.Version)
	visit.OS = optString(parsed.OS)
	visit.OSVersion = optString(parsed.OSVersion)
	visit.Device = optString(deviceClass(parsed))
}

func deviceClass(parsed useragent.UserAgent) string {
	switch {
	case parsed.Bot:
		return "bot"
	case parsed.Mobile:
		return "mobile"
	case parsed.Tablet:
		return "tablet"
	case parsed.Desktop:
		return "desktop"
	default:
		return ""
	}
}

func optString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func optInt(value int) *int {
	if value <= 0 {
		return nil
	}
	return &value
}
