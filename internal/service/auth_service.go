package service

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"rifa-digital/backend/config"
	"rifa-digital/backend/pkg/jwt"
)

// AuthService 管理员认证服务接口
type AuthService interface {
	// Login 校验管理员凭证，成功则签发会话 Token
	Login(ctx context.Context, email, password string) (token string, err error)
}

type authService struct {
	cfg    *config.AuthConfig
	jwtMgr *jwt.Manager
}

// NewAuthService 创建认证服务
func NewAuthService(cfg *config.Config, jwtMgr *jwt.Manager) AuthService {
	return &authService{cfg: &cfg.Auth, jwtMgr: jwtMgr}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	// 单管理员账号，凭证来自环境配置；邮箱比对忽略大小写
	if !strings.EqualFold(strings.TrimSpace(email), s.cfg.AdminEmail) {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.jwtMgr.GenerateSessionToken(s.cfg.AdminEmail)
}
