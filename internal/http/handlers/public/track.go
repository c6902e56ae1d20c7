package public

import (
	"github.com/maya-downloads/api/internal/http/response"
	"github.com/maya-downloads/api/internal/logger"
	"github.com/maya-downloads/api/internal/service"

	"github.com/gin-gonic/gin"
)

// TrackVisit 访问上报
// 埋点接口对前端永远返回 200 的语义封装在响应码里，
// 写库失败返回 500，前端的上报脚本不重试。
func (h *Handler) TrackVisit(c *gin.Context) {
	var req service.RecordVisitInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}

	if err := h.TrackingService.RecordVisit(req, c.ClientIP(), c.GetHeader("User-Agent")); err != nil {
		logger.Errorw("track_visit_failed", "error", err)
		response.Error(c, response.CodeInternal, "failed to record visit")
		return
	}
	response.Success(c, nil)
}

// TrackEvent 事件上报
func (h *Handler) TrackEvent(c *gin.Context) {
	var req service.RecordEventInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}
	if req.EventType == "" {
		response.BadRequest(c, "event_type is required")
		return
	}

	if err := h.TrackingService.RecordEvent(req); err != nil {
		logger.Errorw("track_event_failed", "event_type", req.EventType, "error", err)
		response.Error(c, response.CodeInternal, "failed to record event")
		return
	}
	response.Success(c, nil)
}
