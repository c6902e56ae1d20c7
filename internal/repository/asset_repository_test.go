package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/maya-downloads/api/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAssetRepositoryTest(t *testing.T) *GormAssetRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Asset{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return NewAssetRepository(db)
}

func TestAssetListFiltersAndPagination(t *testing.T) {
	repo := setupAssetRepositoryTest(t)

	seed := []models.Asset{
		{Slug: "aurora-pack", Title: "Aurora Wallpapers", Category: "wallpaper", FileURL: "/f/aurora.zip", IsActive: true, SortOrder: 1},
		{Slug: "go-ebook", Title: "Go Notes", Category: "ebook", FileURL: "/f/go.pdf", IsActive: true, SortOrder: 2},
		{Slug: "cable-clip", Title: "Cable Clip", Category: "3d_print", FileURL: "/f/clip.stl", IsActive: false, SortOrder: 3},
	}
	for i := range seed {
		if err := repo.Create(&seed[i]); err != nil {
			t.Fatalf("create asset failed: %v", err)
		}
	}

	// 公开目录只看上架资源
	assets, total, err := repo.List(AssetListFilter{Page: 1, PageSize: 10, OnlyActive: true})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(assets) != 2 {
		t.Fatalf("active list want 2 got total=%d rows=%d", total, len(assets))
	}

	// 分页：total 是全量，行数按页大小截断
	assets, total, err = repo.List(AssetListFilter{Page: 2, PageSize: 1})
	if err != nil {
		t.Fatalf("paged list failed: %v", err)
	}
	if total != 3 || len(assets) != 1 {
		t.Fatalf("paged list want total=3 rows=1 got total=%d rows=%d", total, len(assets))
	}
	if assets[0].Slug != "go-ebook" {
		t.Fatalf("page 2 size 1 want go-ebook got %s", assets[0].Slug)
	}

	// 非法页大小回落到默认值，而不是全量返回
	assets, _, err = repo.List(AssetListFilter{Page: 0, PageSize: -5})
	if err != nil {
		t.Fatalf("list with bad page size failed: %v", err)
	}
	if len(assets) != 3 {
		t.Fatalf("default page size should cover the seed set, got %d rows", len(assets))
	}

	// 标题模糊搜索
	_, total, err = repo.List(AssetListFilter{Page: 1, PageSize: 10, Search: "Cable"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("search want 1 got %d", total)
	}
}
