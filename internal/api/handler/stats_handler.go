package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rifa-digital/backend/internal/service"
	"rifa-digital/backend/pkg/response"
)

// StatsHandler 统计与进度接口
type StatsHandler struct {
	statsSvc service.StatsService
	logger   *zap.Logger
}

// NewStatsHandler 创建统计 Handler
func NewStatsHandler(statsSvc service.StatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc, logger: logger}
}

// AdminStats 管理端全量统计
// GET /api/v1/admin/stats
func (h *StatsHandler) AdminStats(c *gin.Context) {
	stats, err := h.statsSvc.AdminStats(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	response.OK(c, stats)
}

// Progress 公开售卖进度
// GET /api/v1/raffle/progress
func (h *StatsHandler) Progress(c *gin.Context) {
	progress, err := h.statsSvc.Progress(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	response.OK(c, progress)
}

// Sold 已售号码公示
// GET /api/v1/numbers/sold
func (h *StatsHandler) Sold(c *gin.Context) {
	entries, err := h.statsSvc.SoldNumbers(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	response.OK(c, entries)
}
