package admin

import (
	"strconv"
	"strings"

	"github.com/maya-downloads/api/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetStats 获取统计摘要
// days 支持小数（0.5 = 最近 12 小时），非法值回退默认窗口。
func (h *Handler) GetStats(c *gin.Context) {
	days := 0.0
	if raw := strings.TrimSpace(c.Query("days")); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			days = parsed
		}
	}

	summary, err := h.StatsService.GetStats(c.Request.Context(), days)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to compute stats", err)
		return
	}
	response.Success(c, summary)
}
