package public

import (
	"errors"
	"strconv"

	"github.com/maya-downloads/api/internal/http/response"
	"github.com/maya-downloads/api/internal/logger"
	"github.com/maya-downloads/api/internal/repository"
	"github.com/maya-downloads/api/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAssets 获取资源列表（仅上架资源）
func (h *Handler) GetAssets(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	assets, total, err := h.AssetService.ListAssets(repository.AssetListFilter{
		Page:       page,
		PageSize:   pageSize,
		Category:   c.Query("category"),
		Search:     c.Query("search"),
		OnlyActive: true,
	})
	if err != nil {
		logger.Errorw("public_assets_list_failed", "error", err)
		response.Error(c, response.CodeInternal, "failed to load assets")
		return
	}

	response.SuccessWithPage(c, assets, response.NewPagination(page, pageSize, total))
}

// GetAssetBySlug 获取资源详情
func (h *Handler) GetAssetBySlug(c *gin.Context) {
	asset, err := h.AssetService.GetAssetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrAssetNotFound) {
			response.NotFound(c, "asset not found")
			return
		}
		logger.Errorw("public_asset_fetch_failed", "slug", c.Param("slug"), "error", err)
		response.Error(c, response.CodeInternal, "failed to load asset")
		return
	}
	response.Success(c, asset)
}

// DownloadRequest 下载请求附带的埋点上下文
type DownloadRequest struct {
	SessionID   string `json:"session_id"`
	Page        string `json:"page"`
	UtmSource   string `json:"utm_source"`
	UtmCampaign string `json:"utm_campaign"`
	UtmTerm     string `json:"utm_term"`
}

// DownloadAsset 记录下载并返回文件地址
func (h *Handler) DownloadAsset(c *gin.Context) {
	var req DownloadRequest
	// body 可空，老版本前端直接 POST 不带载荷
	_ = c.ShouldBindJSON(&req)

	asset, err := h.AssetService.RecordDownload(c.Param("slug"), req.SessionID, req.Page, req.UtmSource, req.UtmCampaign, req.UtmTerm)
	if err != nil {
		if errors.Is(err, service.ErrAssetNotFound) {
			response.NotFound(c, "asset not found")
			return
		}
		logger.Errorw("public_asset_download_failed", "slug", c.Param("slug"), "error", err)
		response.Error(c, response.CodeInternal, "failed to record download")
		return
	}

	response.Success(c, gin.H{
		"file_url": asset.FileURL,
		"title":    asset.Title,
	})
}
