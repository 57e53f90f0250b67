package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sorlens/internal/config"
	"sorlens/internal/importer"
	"sorlens/internal/store"
)

// RunStore 运行历史存储
type RunStore interface {
	importer.RunRecorder
	ListRuns(limit int) ([]store.Run, error)
	GetRun(runID string) (*store.RunDetail, error)
	ListRunDays() ([]store.DayStat, error)
}

// Handler API 处理器
type Handler struct {
	cfg        *config.AppConfig
	store      RunStore
	reportsDir string
	downloads  *reportDownloadStore
	logger     *zap.Logger
}

// NewHandler 创建 API 处理器；reportsDir 为生成报告的存放目录
func NewHandler(cfg *config.AppConfig, store RunStore, reportsDir string) *Handler {
	return &Handler{
		cfg:        cfg,
		store:      store,
		reportsDir: reportsDir,
		downloads:  newReportDownloadStore(),
		logger:     zap.L().Named("api"),
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 分析
	router.POST("/analyze", h.Analyze)
	router.POST("/analyze/stream", h.AnalyzeStream)

	// 报告
	router.POST("/report", h.Report)
	router.GET("/report/download/:token", h.DownloadReport)

	// 运行历史
	router.GET("/runs", h.ListRuns)
	router.GET("/runs/days", h.ListRunDays)
	router.GET("/runs/:id", h.GetRun)
}
