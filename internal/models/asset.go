package models

import "time"

// Asset 可下载资源
type Asset struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	Slug          string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"slug"`         // URL 标识
	Title         string    `gorm:"type:varchar(255);not null" json:"title"`                    // 展示标题
	Category      string    `gorm:"type:varchar(64);index;not null" json:"category"`            // wallpaper / ebook / 3d_print
	Description   string    `gorm:"type:text" json:"description"`                               // 描述
	FileURL       string    `gorm:"type:varchar(1024);not null" json:"file_url"`                // 文件地址
	ThumbURL      string    `gorm:"type:varchar(1024)" json:"thumb_url"`                        // 缩略图地址
	FileSize      int64     `json:"file_size"`                                                  // 文件字节数
	SortOrder     int       `gorm:"default:0" json:"sort_order"`                                // 展示排序
	IsActive      bool      `gorm:"index;default:true" json:"is_active"`                        // 是否上架
	DownloadCount int64     `gorm:"default:0" json:"download_count"`                            // 累计下载次数
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Asset) TableName() string {
	return "assets"
}
