package repository

import (
	"errors"

	"github.com/maya-downloads/api/internal/models"

	"gorm.io/gorm"
)

// AssetListFilter 查询资源列表的过滤条件
type AssetListFilter struct {
	Page       int
	PageSize   int
	Category   string
	Search     string
	OnlyActive bool
}

// AssetRepository 资源目录数据访问接口
type AssetRepository interface {
	Create(asset *models.Asset) error
	Update(asset *models.Asset) error
	Delete(id uint) error
	GetByID(id uint) (*models.Asset, error)
	GetBySlug(slug string) (*models.Asset, error)
	List(filter AssetListFilter) ([]models.Asset, int64, error)
	IncrementDownloadCount(id uint) error
}

// 目录分页：页大小越界回落到默认值，页码从 1 起算
const (
	assetPageSizeDefault = 20
	assetPageSizeMax     = 100
)

// GormAssetRepository GORM 资源仓库实现
type GormAssetRepository struct {
	db *gorm.DB
}

// NewAssetRepository 创建资源仓库
func NewAssetRepository(db *gorm.DB) *GormAssetRepository {
	return &GormAssetRepository{db: db}
}

// Create 创建资源
func (r *GormAssetRepository) Create(asset *models.Asset) error {
	if asset == nil {
		return nil
	}
	return r.db.Create(asset).Error
}

// Update 更新资源
func (r *GormAssetRepository) Update(asset *models.Asset) error {
	if asset == nil {
		return nil
	}
	return r.db.Save(asset).Error
}

// Delete 删除资源
func (r *GormAssetRepository) Delete(id uint) error {
	return r.db.Delete(&models.Asset{}, id).Error
}

// GetByID 按主键查询资源
func (r *GormAssetRepository) GetByID(id uint) (*models.Asset, error) {
	var asset models.Asset
	if err := r.db.First(&asset, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &asset, nil
}

// GetBySlug 按 slug 查询资源
func (r *GormAssetRepository) GetBySlug(slug string) (*models.Asset, error) {
	var asset models.Asset
	if err := r.db.Where("slug = ?", slug).First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &asset, nil
}

// List 查询资源列表
func (r *GormAssetRepository) List(filter AssetListFilter) ([]models.Asset, int64, error) {
	query := r.db.Model(&models.Asset{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR slug LIKE ?", like, like)
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = r.paginate(query, filter.Page, filter.PageSize)

	var assets []models.Asset
	if err := query.Order("sort_order ASC, id DESC").Find(&assets).Error; err != nil {
		return nil, 0, err
	}
	return assets, total, nil
}

// paginate 将页码换算成 LIMIT/OFFSET
func (r *GormAssetRepository) paginate(query *gorm.DB, page, pageSize int) *gorm.DB {
	if pageSize <= 0 || pageSize > assetPageSizeMax {
		pageSize = assetPageSizeDefault
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}

// IncrementDownloadCount 下载计数加一
func (r *GormAssetRepository) IncrementDownloadCount(id uint) error {
	return r.db.Model(&models.Asset{}).
		Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error
}
