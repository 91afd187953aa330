package model

import "time"

// Purchase 号码台账表 — 对应 purchases
// 每行代表一个已售出的抽奖号码（"000"-"999"）；number 全局唯一是本系统的首要不变量
// 买家信息在认领时从 Link 反规范化拷贝；token 为指向来源链接的回引
// 记录只由认领协调器创建，除 paid（对账流程带外更新）外不修改，正常运营下不删除
type Purchase struct {
	PurchaseID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"purchase_id"`
	Number     string    `gorm:"type:varchar(3);not null;uniqueIndex:uk_purchases_number" json:"number"`
	Token      string    `gorm:"type:varchar(32);not null;index:idx_purchases_token" json:"token"`
	BuyerName  string    `gorm:"not null"               json:"buyer_name"`
	BuyerEmail string    `gorm:"not null"               json:"buyer_email"`
	BuyerPhone string    `gorm:"not null"               json:"buyer_phone"`
	Paid       bool      `gorm:"not null;default:false" json:"paid"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (Purchase) TableName() string { return "purchases" }
