//go:build integration
// +build integration

package repository

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/maya-downloads/api/internal/constants"
	"github.com/maya-downloads/api/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationStore 初始化 PostgreSQL 集成测试存储。
func setupPostgresIntegrationStore(t *testing.T) *GormAnalyticsRepository {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(models.ResolvePostgresDSN(dsn)), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{&models.Visit{}, &models.Event{}}
	_ = db.Migrator().DropTable(cleanupModels...)

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return NewAnalyticsRepository(models.NewRecordStore(db, models.BackendPostgres))
}

func TestPostgresLazySchemaAndStats(t *testing.T) {
	repo := setupPostgresIntegrationStore(t)
	now := time.Now()

	// 首次写入触发惰性建表
	visit := testVisit("pg-v-1", "pg-s1", now)
	visit.Country = strPtr("US")
	if err := repo.InsertVisit(visit); err != nil {
		t.Fatalf("insert visit failed: %v", err)
	}
	if err := repo.InsertEvent(testEvent(constants.EventTypeDownload, "pg-asset", "pg-s1", now)); err != nil {
		t.Fatalf("insert event failed: %v", err)
	}

	// 并发聚合路径
	summary, err := repo.GetStats(context.Background(), 7)
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	if summary.Visits != 1 {
		t.Fatalf("visits want 1 got %d", summary.Visits)
	}
	if summary.Downloads != 1 {
		t.Fatalf("downloads want 1 got %d", summary.Downloads)
	}
	if len(summary.ByCountry) != 1 || summary.ByCountry[0].Country != "US" {
		t.Fatalf("by_country mismatch: %+v", summary.ByCountry)
	}
}

func TestPostgresDuplicateVisitIgnored(t *testing.T) {
	repo := setupPostgresIntegrationStore(t)
	now := time.Now()

	if err := repo.InsertVisit(testVisit("pg-dup", "s1", now)); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := repo.InsertVisit(testVisit("pg-dup", "s2", now)); err != nil {
		t.Fatalf("duplicate insert should not error: %v", err)
	}

	var count int64
	if err := repo.store.DB().Model(&models.Visit{}).Where("visit_id = ?", "pg-dup").Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("row count want 1 got %d", count)
	}
}
