package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rifa-digital/backend/internal/service"
)

// ExportHandler 管理端数据导出接口
type ExportHandler struct {
	exportSvc service.ExportService
	logger    *zap.Logger
}

// NewExportHandler 创建导出 Handler
func NewExportHandler(exportSvc service.ExportService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, logger: logger}
}

// Purchases 导出全部售出记录为 Excel
// GET /api/v1/admin/export/purchases
func (h *ExportHandler) Purchases(c *gin.Context) {
	f, err := h.exportSvc.ExportPurchases(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("compras_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := f.Write(c.Writer); err != nil {
		h.logger.Error("导出文件写出失败", zap.Error(err))
	}
}
