package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/socialfeed/pkg/logger"
	"github.com/d60-Lab/socialfeed/pkg/response"
)

// Search 用户名搜索，无需登录
func (h *Handler) Search(c *gin.Context) {
	q := c.Query("q")
	users, err := h.searchService.Search(c.Request.Context(), q)
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, http.StatusOK, "search_results.html", gin.H{"Title": "Search", "Query": q, "Results": users})
}

// Health 存活与数据库连通性
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /healthz [get]
func (h *Handler) Health(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		logger.Warn("health check failed", zap.Error(err))
		response.Error(c, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	response.Success(c, gin.H{"status": "ok"})
}
