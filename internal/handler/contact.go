package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"card-backend/internal/export"
	"card-backend/internal/model"
	"card-backend/internal/service"
)

// ExportFilename 导出文件名
const ExportFilename = "contacts.xlsx"

// ContactHandler 处理联系人保存与导出
type ContactHandler struct {
	contactService *service.ContactService
	sheetName      string
	logger         *zap.Logger
}

// NewContactHandler 创建联系人处理器
func NewContactHandler(svc *service.ContactService, sheetName string, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{contactService: svc, sheetName: sheetName, logger: logger}
}

// Save 保存联系人到表格
// POST /save-contact，body 为联系人 JSON，缺失字段按空串处理
func (h *ContactHandler) Save(c *gin.Context) {
	// 未配置时不论请求体如何都返回配置错误
	if err := h.contactService.Ready(); err != nil {
		writeError(c, h.logger, "save contact", err)
		return
	}
	var req model.Contact
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, "save contact", invalid("invalid request: %v", err))
		return
	}
	seq, err := h.contactService.Save(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, "error saving to google sheets", err)
		return
	}
	c.JSON(http.StatusOK, model.SaveContactResponse{
		Status:  "success",
		Message: fmt.Sprintf("Contact #%d saved to Google Sheets.", seq),
	})
}

// Download 导出整张表为 xlsx
// GET /download-excel
func (h *ContactHandler) Download(c *gin.Context) {
	rows, err := h.contactService.Export(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "export contacts", err)
		return
	}
	data, err := export.Workbook(h.sheetName, rows)
	if err != nil {
		writeError(c, h.logger, "export contacts", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ExportFilename))
	c.Data(http.StatusOK, export.ContentType, data)
}
