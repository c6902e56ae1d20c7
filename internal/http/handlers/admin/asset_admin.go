package admin

import (
	"errors"
	"strconv"

	"github.com/maya-downloads/api/internal/http/response"
	"github.com/maya-downloads/api/internal/models"
	"github.com/maya-downloads/api/internal/repository"
	"github.com/maya-downloads/api/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminAssets 获取资源列表 (Admin)
func (h *Handler) GetAdminAssets(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	assets, total, err := h.AssetService.ListAssets(repository.AssetListFilter{
		Page:     page,
		PageSize: pageSize,
		Category: c.Query("category"),
		Search:   c.Query("search"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load assets", err)
		return
	}

	response.SuccessWithPage(c, assets, response.NewPagination(page, pageSize, total))
}

// GetAdminAsset 获取资源详情 (Admin)
func (h *Handler) GetAdminAsset(c *gin.Context) {
	id, ok := parseAssetID(c)
	if !ok {
		return
	}

	asset, err := h.AssetService.GetAssetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrAssetNotFound) {
			respondError(c, response.CodeNotFound, "asset not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to load asset", err)
		return
	}
	response.Success(c, asset)
}

// AssetRequest 创建/更新资源请求
type AssetRequest struct {
	Slug        string `json:"slug" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Description string `json:"description"`
	FileURL     string `json:"file_url" binding:"required"`
	ThumbURL    string `json:"thumb_url"`
	FileSize    int64  `json:"file_size"`
	SortOrder   int    `json:"sort_order"`
	IsActive    *bool  `json:"is_active"`
}

// CreateAsset 创建资源
func (h *Handler) CreateAsset(c *gin.Context) {
	var req AssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	asset := &models.Asset{
		Slug:        req.Slug,
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		FileURL:     req.FileURL,
		ThumbURL:    req.ThumbURL,
		FileSize:    req.FileSize,
		SortOrder:   req.SortOrder,
		IsActive:    true,
	}
	if req.IsActive != nil {
		asset.IsActive = *req.IsActive
	}

	if err := h.AssetService.CreateAsset(asset); err != nil {
		if errors.Is(err, service.ErrAssetSlugExists) {
			respondError(c, response.CodeBadRequest, "slug already exists", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to create asset", err)
		return
	}
	response.Success(c, asset)
}

// UpdateAsset 更新资源
func (h *Handler) UpdateAsset(c *gin.Context) {
	id, ok := parseAssetID(c)
	if !ok {
		return
	}

	var req AssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	asset, err := h.AssetService.GetAssetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrAssetNotFound) {
			respondError(c, response.CodeNotFound, "asset not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to load asset", err)
		return
	}

	asset.Slug = req.Slug
	asset.Title = req.Title
	asset.Category = req.Category
	asset.Description = req.Description
	asset.FileURL = req.FileURL
	asset.ThumbURL = req.ThumbURL
	asset.FileSize = req.FileSize
	asset.SortOrder = req.SortOrder
	if req.IsActive != nil {
		asset.IsActive = *req.IsActive
	}

	if err := h.AssetService.UpdateAsset(asset); err != nil {
		respondError(c, response.CodeInternal, "failed to update asset", err)
		return
	}
	response.Success(c, asset)
}

// DeleteAsset 删除资源
func (h *Handler) DeleteAsset(c *gin.Context) {
	id, ok := parseAssetID(c)
	if !ok {
		return
	}

	if err := h.AssetService.DeleteAsset(id); err != nil {
		if errors.Is(err, service.ErrAssetNotFound) {
			respondError(c, response.CodeNotFound, "asset not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to delete asset", err)
		return
	}
	response.Success(c, nil)
}

func parseAssetID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid asset id", nil)
		return 0, false
	}
	return uint(id), true
}
