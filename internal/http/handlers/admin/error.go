package admin

import (
	"github.com/maya-downloads/api/internal/http/response"
	"github.com/maya-downloads/api/internal/logger"

	"github.com/gin-gonic/gin"
)

// respondError 统一错误响应，内部错误记日志
func respondError(c *gin.Context, code int, msg string, err error) {
	if err != nil {
		logger.Errorw("admin_request_failed",
			"path", c.Request.URL.Path,
			"code", code,
			"error", err,
		)
	}
	response.Error(c, code, msg)
}

// getAdminID 从上下文取当前管理员 ID，失败直接响应 401
func getAdminID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("admin_id")
	if !exists {
		response.Unauthorized(c, "unauthorized")
		c.Abort()
		return 0, false
	}
	id, ok := value.(uint)
	if !ok || id == 0 {
		response.Unauthorized(c, "unauthorized")
		c.Abort()
		return 0, false
	}
	return id, true
}

func normalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
