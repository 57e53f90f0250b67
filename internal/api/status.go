package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sorlens/internal/model"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Ready       bool             `json:"ready"`       // 存储可用
	Mode        model.ImportMode `json:"mode"`        // 默认解析模式
	Workers     int              `json:"workers"`     // 并行处理文件数
	TotalRuns   int              `json:"totalRuns"`   // 历史运行次数（按日统计之和）
	LastRunTime string           `json:"lastRunTime"` // 最近一次运行时间
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	resp := StatusResponse{
		Mode:    h.cfg.ImportMode(),
		Workers: h.cfg.Analysis.Workers,
	}

	days, err := h.store.ListRunDays()
	if err != nil {
		c.JSON(http.StatusOK, resp)
		return
	}
	resp.Ready = true
	for _, d := range days {
		resp.TotalRuns += d.Runs
	}

	runs, err := h.store.ListRuns(1)
	if err == nil && len(runs) > 0 {
		resp.LastRunTime = runs[0].StartedAt.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, resp)
}
