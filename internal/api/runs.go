package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"

	"sorlens/internal/store"
)

// ListRuns 运行历史（最近优先）
// GET /api/runs?limit=50
func (h *Handler) ListRuns(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的 limit"})
			return
		}
		limit = n
	}

	runs, err := h.store.ListRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": runs})
}

// ListRunDays 按日统计的运行次数
// GET /api/runs/days
func (h *Handler) ListRunDays(c *gin.Context) {
	days, err := h.store.ListRunDays()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": days})
}

// GetRun 单次运行详情（含每个文件的列映射与跳过原因）
// GET /api/runs/:id
func (h *Handler) GetRun(c *gin.Context) {
	detail, err := h.store.GetRun(c.Param("id"))
	if err != nil {
		if eris.Is(err, store.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "运行记录不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, detail)
}
