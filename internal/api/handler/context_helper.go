package handler

import (
	"github.com/gin-gonic/gin"

	"rifa-digital/backend/pkg/response"
)

// getAdminEmail 从上下文取出认证中间件注入的管理员邮箱
// 缺失说明路由未挂认证中间件，按未认证处理
func getAdminEmail(c *gin.Context) (string, bool) {
	v, exists := c.Get("admin_email")
	if !exists {
		response.Unauthorized(c, CodeUnauthorized, "未登录")
		return "", false
	}
	email, ok := v.(string)
	if !ok || email == "" {
		response.Unauthorized(c, CodeUnauthorized, "未登录")
		return "", false
	}
	return email, true
}
