package dto

import "time"

// LoginRequest 管理员登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 管理员登录响应
type LoginResponse struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MeResponse 当前会话信息
type MeResponse struct {
	Email string `json:"email"`
}
