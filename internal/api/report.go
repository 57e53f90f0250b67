package api

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sorlens/internal/exporter"
)

// ReportResponse 报告生成结果
type ReportResponse struct {
	RunID       string `json:"runId"`
	FileName    string `json:"fileName"`
	Font        string `json:"font"`
	DownloadURL string `json:"downloadUrl"`
}

// ReportFileName 运行对应的报告文件名
func ReportFileName(runID string) string {
	return fmt.Sprintf("sorlens_%s.xlsx", runID)
}

// Report 分析上传的表格并生成 XLSX 报告，返回一次性下载地址
// POST /api/report
func (h *Handler) Report(c *gin.Context) {
	report, err, ok := h.analyzeRequest(c.Request.Context(), c, nil)
	if !ok {
		return
	}
	if err != nil {
		h.logger.Warn("report analysis failed", zap.Error(err))
		c.JSON(analysisErrorStatus(err), newErrorResponse(report, err))
		return
	}

	exp := exporter.NewExporter(exporter.Options{
		Title: h.cfg.Report.Title,
		Font:  h.cfg.Report.Font,
	})
	file, err := exp.Export(report, func(p exporter.ProgressEvent) {
		h.logger.Debug("report progress", zap.String("run_id", report.RunID), zap.Int("percent", p.Percent), zap.String("stage", p.Stage))
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "导出失败: " + err.Error()})
		return
	}
	defer file.Close()

	if err := os.MkdirAll(h.reportsDir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建报告目录失败"})
		return
	}
	fileName := ReportFileName(report.RunID)
	path := filepath.Join(h.reportsDir, fileName)
	if err := file.SaveAs(path); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "写入报告文件失败: " + err.Error()})
		return
	}

	token := h.downloads.put(path, report.RunID, reportDownloadTTL)
	h.logger.Info("report generated", zap.String("run_id", report.RunID), zap.String("path", path))

	c.JSON(http.StatusOK, ReportResponse{
		RunID:       report.RunID,
		FileName:    fileName,
		Font:        exp.Font(),
		DownloadURL: "/api/report/download/" + token,
	})
}

// DownloadReport 下载生成的报告（链接一次性有效）
// GET /api/report/download/:token
func (h *Handler) DownloadReport(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 token"})
		return
	}

	item, ok := h.downloads.get(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "下载链接已失效"})
		return
	}
	if _, err := os.Stat(item.filePath); err != nil {
		h.downloads.delete(token)
		c.JSON(http.StatusNotFound, gin.H{"error": "报告文件不存在"})
		return
	}

	name := filepath.Base(item.filePath)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", name, url.PathEscape(name)))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.File(item.filePath)

	h.downloads.delete(token)
}
