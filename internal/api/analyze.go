package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"sorlens/internal/calculator"
	"sorlens/internal/importer"
	"sorlens/internal/model"
)

// AnalyzeResponse 分析结果
type AnalyzeResponse struct {
	Report   *model.BatchReport         `json:"report"`
	Overview []calculator.IndicatorGroup `json:"overview"`
}

// errorResponse 分析失败时的响应体；整批失败时附带每个文件的跳过原因
type errorResponse struct {
	Error       string             `json:"error"`
	SkipReasons []model.SkipReason `json:"skipReasons,omitempty"`
	Report      *model.BatchReport `json:"report,omitempty"`
}

// uploadSources 读取 multipart 表单中的全部 file 字段
func uploadSources(c *gin.Context) ([]importer.Source, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, eris.Wrap(err, "无效的表单数据")
	}
	files := form.File["file"]
	if len(files) == 0 {
		return nil, eris.New("未找到上传文件")
	}

	sources := make([]importer.Source, 0, len(files))
	for _, fh := range files {
		fh := fh
		sources = append(sources, importer.Source{
			Name: fh.Filename,
			Open: func() (io.ReadCloser, error) { return fh.Open() },
		})
	}
	return sources, nil
}

// requestMode 表单中的 mode，缺省取配置
func (h *Handler) requestMode(c *gin.Context) (model.ImportMode, error) {
	raw := c.PostForm("mode")
	if raw == "" {
		return h.cfg.ImportMode(), nil
	}
	mode := model.ImportMode(raw)
	if !mode.Valid() {
		return "", eris.Errorf("未知的解析模式: %s", raw)
	}
	return mode, nil
}

func (h *Handler) newCoordinator(mode model.ImportMode, onProgress func(importer.ProgressEvent)) *importer.Coordinator {
	return importer.NewCoordinator(importer.Options{
		Mode:       mode,
		Workers:    h.cfg.Analysis.Workers,
		LevelSpan:  h.cfg.Analysis.LevelSpan,
		Lexicon:    h.cfg.Lexicon(),
		OnProgress: onProgress,
	}, h.store)
}

// analyzeRequest 解析请求并执行分析；请求本身无效时已写出 400 并返回 ok=false
func (h *Handler) analyzeRequest(ctx context.Context, c *gin.Context, onProgress func(importer.ProgressEvent)) (report *model.BatchReport, runErr error, ok bool) {
	mode, err := h.requestMode(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	sources, err := uploadSources(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, false
	}

	report, runErr = h.newCoordinator(mode, onProgress).Run(ctx, sources)
	return report, runErr, true
}

// analysisErrorStatus 分析错误对应的 HTTP 状态码
func analysisErrorStatus(err error) int {
	if eris.Is(err, importer.ErrNoUsableSources) || eris.Is(err, importer.ErrNoAssessmentRows) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func newErrorResponse(report *model.BatchReport, err error) errorResponse {
	resp := errorResponse{Error: err.Error(), SkipReasons: importer.Reasons(err), Report: report}
	if resp.SkipReasons == nil && report != nil {
		resp.SkipReasons = report.SkipReasons
	}
	return resp
}

// Analyze 分析上传的表格
// POST /api/analyze
func (h *Handler) Analyze(c *gin.Context) {
	report, err, ok := h.analyzeRequest(c.Request.Context(), c, nil)
	if !ok {
		return
	}
	if err != nil {
		h.logger.Warn("analysis failed", zap.Error(err))
		c.JSON(analysisErrorStatus(err), newErrorResponse(report, err))
		return
	}

	c.JSON(http.StatusOK, AnalyzeResponse{
		Report:   report,
		Overview: calculator.Overview(report),
	})
}

// AnalyzeStream 分析上传的表格 (SSE 流式响应)
// POST /api/analyze/stream
func (h *Handler) AnalyzeStream(c *gin.Context) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	started := false
	send := func(event importer.ProgressEvent) {
		if !started {
			// 设置 SSE 响应头
			c.Header("Content-Type", "text/event-stream")
			c.Header("Cache-Control", "no-cache")
			c.Header("Connection", "keep-alive")
			c.Header("X-Accel-Buffering", "no")
			c.Status(http.StatusOK)
			started = true
		}
		eventData, err := json.Marshal(event)
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}

	_, err, ok := h.analyzeRequest(c.Request.Context(), c, send)
	if !ok {
		return
	}
	if err != nil {
		send(importer.ProgressEvent{
			Type:      "error",
			Message:   err.Error(),
			Data:      importer.Reasons(err),
			Timestamp: time.Now(),
		})
	}
}
