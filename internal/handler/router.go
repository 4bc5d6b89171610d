package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"card-backend/internal/middleware"
	"card-backend/internal/service"
)

// LivenessMessage GET / 返回的存活文本
const LivenessMessage = "Card Scanner Backend is live and running."

// Options 路由可选项
type Options struct {
	AllowOrigins []string // 为空时允许所有来源
	MaxUploadMB  int64
	SheetName    string // 导出文件中的工作表名
}

// Router 注册路由与中间件
func Router(scan *service.ScanService, contacts *service.ContactService, logger *zap.Logger, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(logger), middleware.Recovery(logger), corsMiddleware(opts.AllowOrigins))
	if opts.MaxUploadMB > 0 {
		r.MaxMultipartMemory = opts.MaxUploadMB << 20
	}

	cardHandler := NewCardHandler(scan, logger)
	contactHandler := NewContactHandler(contacts, opts.SheetName, logger)

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, LivenessMessage)
	})
	r.POST("/scan-card", cardHandler.Scan)
	r.POST("/save-contact", contactHandler.Save)
	r.GET("/download-excel", contactHandler.Download)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, middleware.RequestIDHeader)
	cfg.ExposeHeaders = []string{middleware.RequestIDHeader, "Content-Disposition"}
	return cors.New(cfg)
}
