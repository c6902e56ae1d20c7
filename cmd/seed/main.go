package main

import (
	"github.com/maya-downloads/api/internal/config"
	"github.com/maya-downloads/api/internal/constants"
	"github.com/maya-downloads/api/internal/logger"
	"github.com/maya-downloads/api/internal/models"
)

// seed 向空库写入一批演示资源，方便本地开发联调。
func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.URL, cfg.Database.SQLitePath, models.DBPoolConfig{
		MaxOpenConns: cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns: cfg.Database.Pool.MaxIdleConns,
	}); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}
	if err := models.MigrateSite(); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}

	assets := []models.Asset{
		{
			Slug:        "aurora-4k-wallpaper",
			Title:       "Aurora 4K Wallpaper Pack",
			Category:    constants.AssetCategoryWallpaper,
			Description: "Ten aurora photographs in 3840x2160.",
			FileURL:     "/files/aurora-4k-pack.zip",
			ThumbURL:    "/thumbs/aurora-4k.jpg",
			FileSize:    52428800,
			SortOrder:   1,
			IsActive:    true,
		},
		{
			Slug:        "minimal-go-ebook",
			Title:       "Minimal Go: Patterns for Small Services",
			Category:    constants.AssetCategoryEbook,
			Description: "A short ebook on building small Go services.",
			FileURL:     "/files/minimal-go.pdf",
			ThumbURL:    "/thumbs/minimal-go.jpg",
			FileSize:    3145728,
			SortOrder:   2,
			IsActive:    true,
		},
		{
			Slug:        "desk-cable-clip",
			Title:       "Desk Cable Clip (STL)",
			Category:    constants.AssetCategoryPrint,
			Description: "Printable cable clip, no supports needed.",
			FileURL:     "/files/desk-cable-clip.stl",
			ThumbURL:    "/thumbs/desk-cable-clip.jpg",
			FileSize:    1048576,
			SortOrder:   3,
			IsActive:    true,
		},
	}

	created := 0
	for i := range assets {
		var existing models.Asset
		if err := models.DB.Where("slug = ?", assets[i].Slug).First(&existing).Error; err == nil {
			continue
		}
		if err := models.DB.Create(&assets[i]).Error; err != nil {
			stdLog.Fatalf("写入演示资源失败: %v", err)
		}
		created++
	}

	stdLog.Printf("演示资源写入完成，新增 %d 条", created)
}
