package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"card-backend/internal/model"
	"card-backend/internal/service"
)

// CardHandler 处理名片识别请求
type CardHandler struct {
	scanService *service.ScanService
	logger      *zap.Logger
}

// NewCardHandler 创建名片识别处理器
func NewCardHandler(svc *service.ScanService, logger *zap.Logger) *CardHandler {
	return &CardHandler{scanService: svc, logger: logger}
}

// Scan 识别上传的名片图片
// POST /scan-card，multipart 字段 front（必填）、back（可选）
func (h *CardHandler) Scan(c *gin.Context) {
	frontHeader, err := c.FormFile("front")
	if err != nil {
		writeError(c, h.logger, "scan card", invalid(msgMissingFront))
		return
	}
	front, err := readImage("front", frontHeader)
	if err != nil {
		writeError(c, h.logger, "scan card", err)
		return
	}

	var back *model.CardImage
	if backHeader, err := c.FormFile("back"); err == nil {
		img, err := readImage("back", backHeader)
		if err != nil {
			writeError(c, h.logger, "scan card", err)
			return
		}
		back = &img
	}

	contact, err := h.scanService.Scan(c.Request.Context(), front, back)
	if err != nil {
		writeError(c, h.logger, "card extraction failed", err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

func readImage(field string, fh *multipart.FileHeader) (model.CardImage, error) {
	f, err := fh.Open()
	if err != nil {
		return model.CardImage{}, fmt.Errorf("open upload %s: %w", field, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return model.CardImage{}, fmt.Errorf("read upload %s: %w", field, err)
	}
	return model.CardImage{
		Field:    field,
		Filename: fh.Filename,
		MIMEType: service.DetectMIMEType(fh.Filename),
		Data:     data,
	}, nil
}
