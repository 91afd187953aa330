package dto

import "time"

// CreateLinkRequest 创建购买链接请求
// opportunities 不做 binding 校验：档位合法性由服务层允许集判定，
// 缺省/零值与越界值统一返回同一错误码
type CreateLinkRequest struct {
	Opportunities int `json:"opportunities"`
}

// CreateLinkResponse 创建购买链接响应
type CreateLinkResponse struct {
	Token         string    `json:"token"`
	URL           string    `json:"url"`
	Opportunities int       `json:"opportunities"`
	Remaining     int       `json:"remaining"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// BuyerInfo 买家身份信息
type BuyerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// BindBuyerRequest 登记买家信息请求
type BindBuyerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"required"`
}

// LinkResponse 链接详情响应（买家侧访问链接时返回）
type LinkResponse struct {
	Token         string     `json:"token"`
	Opportunities int        `json:"opportunities"`
	Remaining     int        `json:"remaining"`
	Active        bool       `json:"active"`
	ExpiresAt     time.Time  `json:"expires_at"`
	Buyer         *BuyerInfo `json:"buyer,omitempty"`
}

// SweepResponse 过期清扫响应
type SweepResponse struct {
	ExpiredCount  int      `json:"expired_count"`
	ExpiredTokens []string `json:"expired_tokens"`
}
