package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"student-router/pkg/response"
)

// MustGetToken 从 Gin 上下文中提取当前 Token 的 jti 与过期时间。
// JWT 中间件未注入时写入 401 响应并返回 false，调用方直接 return。
func MustGetToken(c *gin.Context) (string, time.Time, bool) {
	jti := c.GetString("token_jti")
	exp, ok := c.Get("token_exp")
	if jti == "" || !ok {
		response.Unauthorized(c, "未认证")
		return "", time.Time{}, false
	}
	expiresAt, ok := exp.(time.Time)
	if !ok {
		response.Unauthorized(c, "未认证")
		return "", time.Time{}, false
	}
	return jti, expiresAt, true
}
