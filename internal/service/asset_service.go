package service

import (
	"errors"

	"github.com/maya-downloads/api/internal/constants"
	"github.com/maya-downloads/api/internal/logger"
	"github.com/maya-downloads/api/internal/models"
	"github.com/maya-downloads/api/internal/repository"
)

var (
	// ErrAssetNotFound 资源不存在
	ErrAssetNotFound = errors.New("asset not found")
	// ErrAssetSlugExists slug 已被占用
	ErrAssetSlugExists = errors.New("asset slug already exists")
)

// AssetService 资源目录服务
type AssetService struct {
	assets   repository.AssetRepository
	tracking *TrackingService
}

// NewAssetService 创建资源服务
func NewAssetService(assets repository.AssetRepository, tracking *TrackingService) *AssetService {
	return &AssetService{
		assets:   assets,
		tracking: tracking,
	}
}

// ListAssets 查询资源列表
func (s *AssetService) ListAssets(filter repository.AssetListFilter) ([]models.Asset, int64, error) {
	return s.assets.List(filter)
}

// GetAssetBySlug 按 slug 查询资源
func (s *AssetService) GetAssetBySlug(slug string) (*models.Asset, error) {
	asset, err := s.assets.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, ErrAssetNotFound
	}
	return asset, nil
}

// GetAssetByID 按主键查询资源
func (s *AssetService) GetAssetByID(id uint) (*models.Asset, error) {
	asset, err := s.assets.GetByID(id)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, ErrAssetNotFound
	}
	return asset, nil
}

// CreateAsset 创建资源，slug 冲突时返回 ErrAssetSlugExists
func (s *AssetService) CreateAsset(asset *models.Asset) error {
	existing, err := s.assets.GetBySlug(asset.Slug)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrAssetSlugExists
	}
	return s.assets.Create(asset)
}

// UpdateAsset 更新资源
func (s *AssetService) UpdateAsset(asset *models.Asset) error {
	existing, err := s.assets.GetByID(asset.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrAssetNotFound
	}
	return s.assets.Update(asset)
}

// DeleteAsset 删除资源
func (s *AssetService) DeleteAsset(id uint) error {
	existing, err := s.assets.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrAssetNotFound
	}
	return s.assets.Delete(id)
}

// RecordDownload 记录一次下载
// 同时做两件事：资源行的下载计数加一，并写入一条下载事件供统计聚合。
// 计数失败只记日志，事件写入失败上抛。
func (s *AssetService) RecordDownload(slug string, sessionID, page, utmSource, utmCampaign, utmTerm string) (*models.Asset, error) {
	asset, err := s.GetAssetBySlug(slug)
	if err != nil {
		return nil, err
	}

	if err := s.assets.IncrementDownloadCount(asset.ID); err != nil {
		logger.Warnw("asset_download_count_failed", "asset_id", asset.ID, "error", err)
	}

	if s.tracking != nil {
		if err := s.tracking.RecordEvent(RecordEventInput{
			SessionID:     sessionID,
			EventType:     constants.EventTypeDownload,
			AssetID:       asset.Slug,
			AssetTitle:    asset.Title,
			AssetCategory: asset.Category,
			Page:          page,
			UtmSource:     utmSource,
			UtmCampaign:   utmCampaign,
			UtmTerm:       utmTerm,
		}); err != nil {
			return nil, err
		}
	}
	return asset, nil
}
