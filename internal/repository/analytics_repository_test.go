package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/maya-downloads/api/internal/constants"
	"github.com/maya-downloads/api/internal/geoip"
	"github.com/maya-downloads/api/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAnalyticsRepositoryTest(t *testing.T) *GormAnalyticsRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	store := models.NewRecordStore(db, models.BackendSQLite)
	if err := store.EnsureSchema(); err != nil {
		t.Fatalf("ensure schema failed: %v", err)
	}
	return NewAnalyticsRepository(store)
}

func strPtr(s string) *string {
	return &s
}

func testVisit(visitID, sessionID string, at time.Time) *models.Visit {
	return &models.Visit{
		VisitID:   visitID,
		SessionID: strPtr(sessionID),
		Timestamp: models.FormatTimestamp(at),
	}
}

func testEvent(eventType, assetID, sessionID string, at time.Time) *models.Event {
	return &models.Event{
		SessionID: strPtr(sessionID),
		Timestamp: models.FormatTimestamp(at),
		EventType: strPtr(eventType),
		AssetID:   strPtr(assetID),
	}
}

func TestInsertVisitDuplicateVisitIDIgnored(t *testing.T) {
	repo := setupAnalyticsRepositoryTest(t)
	now := time.Now()

	first := testVisit("visit-dup", "s1", now)
	first.Page = strPtr("/home")
	if err := repo.InsertVisit(first); err != nil {
		t.Fatalf("insert visit failed: %v", err)
	}

	second := testVisit("visit-dup", "s2", now)
	second.Page = strPtr("/other")
	if err := repo.InsertVisit(second); err != nil {
		t.Fatalf("duplicate insert should not error: %v", err)
	}

	var count int64
	if err := repo.store.DB().Model(&models.Visit{}).Where("visit_id = ?", "visit-dup").Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("row count want 1 got %d", count)
	}

	var stored models.Visit
	if err := repo.store.DB().Where("visit_id = ?", "visit-dup").First(&stored).Error; err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if stored.Page == nil || *stored.Page != "/home" {
		t.Fatalf("first write should win, got page %v", stored.Page)
	}
}

func TestInsertVisitFillsDefaults(t *testing.T) {
	repo := setupAnalyticsRepositoryTest(t)

	visit := &models.Visit{}
	if err := repo.InsertVisit(visit); err != nil {
		t.Fatalf("insert visit failed: %v", err)
	}
	if visit.VisitID == "" {
		t.Fatalf("visit id should be generated")
	}
	if visit.Timestamp == "" {
		t.Fatalf("timestamp should be generated")
	}
	if !strings.HasSuffix(visit.Timestamp, "Z") {
		t.Fatalf("timestamp should be UTC ISO string, got %q", visit.Timestamp)
	}
}

func TestInsertVisitNullAttributesRoundTrip(t *testing.T) {
	repo := setupAnalyticsRepositoryTest(t)

	visit := testVisit("visit-null", "s1", time.Now())
	if err := repo.InsertVisit(visit); err != nil {
		t.Fatalf("insert visit failed: %v", err)
	}

	var stored models.Visit
	if err := repo.store.DB().Where("visit_id = ?", "visit-null").First(&stored).Error; err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if stored.Page != nil || stored.Country != nil || stored.Browser != nil || stored.ScreenWidth != nil {
		t.Fatalf("absent attributes should stay NULL: %+v", stored)
	}
	if stored.SessionID == nil || *stored.SessionID != "s1" {
		t.Fatalf("session id want s1 got %v", stored.SessionID)
	}
}

func TestGetStatsWindowCutoff(t *testing.T) {
	repo := setupAnalyticsRepositoryTest(t)
	now := time.Now()

	if err := repo.InsertVisit(testVisit("v-recent", "s1", now.Add(-time.Hour))); err != nil {
		t.Fatalf("insert recent visit failed: %v", err)
	}
	if err := repo.InsertVisit(testVisit("v-old", "s2", now.Add(-10*24*time.Hour))); err != nil {
		t.Fatalf("insert old visit failed: %v", err)
	}

	summary, err := repo.GetStats(context.Background(), 7)
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	if summary.Visits != 1 {
		t.Fatalf("windowed visits want 1 got %d", summary.Visits)
	}
	// 实时流不受窗口限制
	if len(summary.RecentVisits) != 2 {
		t.Fatalf("recent visits want 2 got %d", len(summary.RecentVisits))
	}
	if summary.RecentVisits[0].VisitID != "v-recent" {
		t.Fatalf("recent visits should be newest first, got %s", summary.RecentVisits[0].VisitID)
	}
}

func TestGetStatsFractionalWindow(t *testing.T) {
	repo := setupAnalyticsRepositoryTest(t)
	now := time.Now()

	if err := repo.InsertVisit(testVisit("v-6h", "s1", now.Add(-6*time.Hour))); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := repo.InsertVisit(testVisit("v-18h", "s2", now.Add(-18*time.Hour))); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	// 0.5 天 = 最近 12 小时
	summary, err := repo.GetStats(context.Background(), 0.5)
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	if summary.Visits != 1 {
		t.Fatalf("half-day visits want 1 got %d", summary.Visits)
	}
}

func TestGetStatsDownloadEventTypes(t *testing.T) {
	repo := setupAnalyticsRepositoryTest(t)
	now := time.Now()

	if err := repo.InsertEvent(testEvent(constants.EventTypeDownload, "asset-a", "s1", now)); err != nil {
		t.Fatalf("insert download failed: %v", err)
	}
	if err := repo.InsertEvent(testEvent(constants.EventTypeDownloadAll, "asset-a", "s1", now)); err != nil {
		t.Fatalf("insert download_all failed: %v", err)
	}
	if err := repo.InsertEvent(testEvent(constants.EventTypeModalOpen, "asset-a", "s1", now)); err != nil {
		t.Fatalf("insert modal_open failed: %v", err)
	}

	summary, err := repo.GetStats(context.Background(), 7)
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	// download 与 download_all 计入下载总量，modal_open 不计
	if summary.Downloads != 2 {
		t.Fatalf("downloads want 2 got %d", summary.Downloads)
	}
	// 排行榜只认单资源下载
	if len(summary.TopAssets) != 1 {
		t.Fatalf("top assets want 1 row got %d", len(summary.TopAssets))
	}
	if summary.TopAssets[0].AssetID != "asset-a" || summary.TopAssets[0].N != 1 {
		t.Fatalf("top asset want asset-a n=1 got %+v", summary.TopAssets[0])
	}
	// 实时下载流包含 download_all
	if len(summary.RecentDownloads) != 2 {
		t.Fatalf("recent downloads want 2 got %d", len(summary.RecentDownloads))
	}
}

func TestGetStatsCountryAggregation(t *testing.T) {
	repo := setupAnalyticsRepositoryTest(t)
	now := time.Now()

	us1 := testVisit("v-us-1", "s1", now)
	us1.Country = strPtr("US")
	us2 := testVisit("v-us-2", "s2", now)
	us2.Country = strPtr("US")
	fr := testVisit("v-fr", "s3", now)
	fr.Country = strPtr("FR")
	unknown := testVisit("v-unknown", "s4", now)
	empty := testVisit("v-empty", "s5", now)
	empty.Country = strPtr("")

	for _, visit := range []*models.Visit{us1, us2, fr, unknown, empty} {
		if err := repo.InsertVisit(visit); err != nil {
			t.Fatalf("insert visit failed: %v", err)
		}
	}

	summary, err := repo.GetStats(context.Background(), 7)
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	if summary.Visits != 5 {
		t.Fatalf("visits want 5 got %d", summary.Visits)
	}
	if summary.UniqueSessions != 5 {
		t.Fatalf("unique sessions want 5 got %d", summary.UniqueSessions)
	}
	// 缺失与空串国家不参与聚合
	if len(summary.ByCountry) != 2 {
		t.Fatalf("by_country want 2 rows got %d", len(summary.ByCountry))
	}
	if summary.ByCountry[0].Country != "US" || summary.ByCountry[0].N != 2 {
		t.Fatalf("top country want US n=2 got %+v", summary.ByCountry[0])
	}
	if summary.ByCountry[1].Country != "FR" || summary.ByCountry[1].N != 1 {
		t.Fatalf("second country want FR n=1 got %+v", summary.ByCountry[1])
	}
}

func TestGetStatsRecentDownloadsJoinVisitContext(t *testing.T) {
	repo := setupAnalyticsRepositoryTest(t)
	now := time.Now()

	visit := testVisit("v-join", "session-join", now)
	visit.Country = strPtr("DE")
	visit.Device = strPtr("desktop")
	if err := repo.InsertVisit(visit); err != nil {
		t.Fatalf("insert visit failed: %v", err)
	}

	event := testEvent(constants.EventTypeDownload, "asset-x", "session-join", now)
	event.AssetTitle = strPtr("Asset X")
	if err := repo.InsertEvent(event); err != nil {
		t.Fatalf("insert event failed: %v", err)
	}
	// 没有对应访问记录的下载也要出现在流里
	if err := repo.InsertEvent(testEvent(constants.EventTypeDownload, "asset-y", "session-orphan", now)); err != nil {
		t.Fatalf("insert orphan event failed: %v", err)
	}

	summary, err := repo.GetStats(context.Background(), 7)
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	if len(summary.RecentDownloads) != 2 {
		t.Fatalf("recent downloads want 2 got %d", len(summary.RecentDownloads))
	}

	var joined, orphan *RecentDownload
	for i := range summary.RecentDownloads {
		row := &summary.RecentDownloads[i]
		switch {
		case row.AssetID != nil && *row.AssetID == "asset-x":
			joined = row
		case row.AssetID != nil && *row.AssetID == "asset-y":
			orphan = row
		}
	}
	if joined == nil || orphan == nil {
		t.Fatalf("missing rows: joined=%v orphan=%v", joined, orphan)
	}
	if joined.Country == nil || *joined.Country != "DE" {
		t.Fatalf("joined download should carry visit country, got %v", joined.Country)
	}
	if joined.Device == nil || *joined.Device != "desktop" {
		t.Fatalf("joined download should carry visit device, got %v", joined.Device)
	}
	if orphan.Country != nil {
		t.Fatalf("orphan download country should be NULL, got %v", *orphan.Country)
	}
}

func TestGetStatsSourceAndPageFacets(t *testing.T) {
	repo := setupAnalyticsRepositoryTest(t)
	now := time.Now()

	v1 := testVisit("v-src-1", "s1", now)
	v1.Page = strPtr("/wallpapers")
	v1.UtmSource = strPtr("newsletter")
	v1.UtmCampaign = strPtr("spring")
	v2 := testVisit("v-src-2", "s2", now)
	v2.Page = strPtr("/wallpapers")
	v2.UtmSource = strPtr("newsletter")
	v2.UtmCampaign = strPtr("spring")
	v3 := testVisit("v-src-3", "s3", now)
	v3.Page = strPtr("/ebooks")

	for _, visit := range []*models.Visit{v1, v2, v3} {
		if err := repo.InsertVisit(visit); err != nil {
			t.Fatalf("insert visit failed: %v", err)
		}
	}

	summary, err := repo.GetStats(context.Background(), 7)
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	if len(summary.ByPage) != 2 {
		t.Fatalf("by_page want 2 rows got %d", len(summary.ByPage))
	}
	if summary.ByPage[0].Page != "/wallpapers" || summary.ByPage[0].N != 2 {
		t.Fatalf("top page want /wallpapers n=2 got %+v", summary.ByPage[0])
	}
	// 无 utm_source 的访问不进来源聚合
	if len(summary.BySource) != 1 {
		t.Fatalf("by_source want 1 row got %d", len(summary.BySource))
	}
	if summary.BySource[0].UtmSource != "newsletter" || summary.BySource[0].UtmCampaign != "spring" || summary.BySource[0].N != 2 {
		t.Fatalf("by_source row mismatch: %+v", summary.BySource[0])
	}
}

func TestGetStatsSourceMergesNullAndEmptyCampaign(t *testing.T) {
	repo := setupAnalyticsRepositoryTest(t)
	now := time.Now()

	// 同一来源：一条 campaign/term 缺失（NULL），一条为显式空串
	v1 := testVisit("v-merge-1", "s1", now)
	v1.UtmSource = strPtr("newsletter")
	v2 := testVisit("v-merge-2", "s2", now)
	v2.UtmSource = strPtr("newsletter")
	v2.UtmCampaign = strPtr("")
	v2.UtmTerm = strPtr("")
	v3 := testVisit("v-merge-3", "s3", now)
	v3.UtmSource = strPtr("newsletter")
	v3.UtmCampaign = strPtr("spring")

	for _, visit := range []*models.Visit{v1, v2, v3} {
		if err := repo.InsertVisit(visit); err != nil {
			t.Fatalf("insert visit failed: %v", err)
		}
	}

	summary, err := repo.GetStats(context.Background(), 7)
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	// NULL 与空串归并为同一行，不能出现两条视觉相同的记录
	if len(summary.BySource) != 2 {
		t.Fatalf("by_source want 2 rows got %d: %+v", len(summary.BySource), summary.BySource)
	}
	if summary.BySource[0].UtmSource != "newsletter" || summary.BySource[0].UtmCampaign != "" || summary.BySource[0].UtmTerm != "" || summary.BySource[0].N != 2 {
		t.Fatalf("merged row want newsletter//n=2 got %+v", summary.BySource[0])
	}
	if summary.BySource[1].UtmCampaign != "spring" || summary.BySource[1].N != 1 {
		t.Fatalf("second row want spring n=1 got %+v", summary.BySource[1])
	}
}

func TestGetStatsCityMergesNullAndEmptyCountry(t *testing.T) {
	repo := setupAnalyticsRepositoryTest(t)
	now := time.Now()

	v1 := testVisit("v-city-1", "s1", now)
	v1.City = strPtr("Lyon")
	v2 := testVisit("v-city-2", "s2", now)
	v2.City = strPtr("Lyon")
	v2.Country = strPtr("")

	for _, visit := range []*models.Visit{v1, v2} {
		if err := repo.InsertVisit(visit); err != nil {
			t.Fatalf("insert visit failed: %v", err)
		}
	}

	summary, err := repo.GetStats(context.Background(), 7)
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	if len(summary.ByCity) != 1 {
		t.Fatalf("by_city want 1 row got %d: %+v", len(summary.ByCity), summary.ByCity)
	}
	if summary.ByCity[0].City != "Lyon" || summary.ByCity[0].Country != "" || summary.ByCity[0].N != 2 {
		t.Fatalf("merged city row want Lyon n=2 got %+v", summary.ByCity[0])
	}
}

func TestUpdateVisitGeoBackfill(t *testing.T) {
	repo := setupAnalyticsRepositoryTest(t)

	if err := repo.InsertVisit(testVisit("v-geo", "s1", time.Now())); err != nil {
		t.Fatalf("insert visit failed: %v", err)
	}

	location := &geoip.Location{
		Country:   "US",
		Region:    "Oregon",
		City:      "Portland",
		Timezone:  "America/Los_Angeles",
		Latitude:  45.52,
		Longitude: -122.68,
	}
	if err := repo.UpdateVisitGeo("v-geo", location); err != nil {
		t.Fatalf("update geo failed: %v", err)
	}

	var stored models.Visit
	if err := repo.store.DB().Where("visit_id = ?", "v-geo").First(&stored).Error; err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if stored.Country == nil || *stored.Country != "US" {
		t.Fatalf("country want US got %v", stored.Country)
	}
	if stored.City == nil || *stored.City != "Portland" {
		t.Fatalf("city want Portland got %v", stored.City)
	}
	if stored.Latitude == nil || *stored.Latitude != 45.52 {
		t.Fatalf("latitude want 45.52 got %v", stored.Latitude)
	}
}
