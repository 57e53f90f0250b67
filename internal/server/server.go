package server

import (
	"embed"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"sorlens/internal/api"
	"sorlens/internal/config"
	"sorlens/internal/store"
)

//go:embed web/index.html
var staticFiles embed.FS

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	store  *store.Store
	api    *api.Handler
	logger *zap.Logger
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig) (*Server, error) {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化 SQLite Store
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, err
	}
	sqliteStore, err := store.New(config.DatabasePath(dataDir))
	if err != nil {
		return nil, eris.Wrap(err, "failed to initialize database")
	}

	s := &Server{
		router: gin.New(),
		store:  sqliteStore,
		api:    api.NewHandler(cfg, sqliteStore, filepath.Join(dataDir, "reports")),
		logger: zap.L().Named("server"),
	}

	s.setupRoutes()

	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery(), s.accessLog())

	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// API 路由
	apiGroup := s.router.Group("/api")
	{
		s.api.RegisterRoutes(apiGroup)
	}

	// Prometheus 指标
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 首页：上传表单
	s.router.GET("/", func(c *gin.Context) {
		data, err := staticFiles.ReadFile("web/index.html")
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	})

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// accessLog 请求日志
func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// Handler 返回 HTTP 处理器
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close 关闭存储
func (s *Server) Close() error {
	return s.store.Close()
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}
