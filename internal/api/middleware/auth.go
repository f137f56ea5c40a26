package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"student-router/pkg/jwt"
	"student-router/pkg/response"
)

// 管理端认证信息在 gin.Context 中的键
const (
	ContextUsername = "username"
	ContextRole     = "role"
	ContextTokenJTI = "token_jti"
	ContextTokenExp = "token_exp"
)

// BlacklistChecker Token 黑名单查询（Redis 实现）
type BlacklistChecker interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Authenticator 管理端 JWT 校验
type Authenticator struct {
	jwtMgr    *jwt.Manager
	blacklist BlacklistChecker
	logger    *zap.Logger
}

// NewAuthenticator 创建 Authenticator
// blacklist 为 nil 时跳过黑名单检查
func NewAuthenticator(jwtMgr *jwt.Manager, blacklist BlacklistChecker, logger *zap.Logger) *Authenticator {
	return &Authenticator{jwtMgr: jwtMgr, blacklist: blacklist, logger: logger}
}

// Authenticate 从 Authorization: Bearer <token> 中提取并验证 Token
// 成功时把管理员信息写入上下文；失败时已写入 401 并 Abort，调用方直接 return
func (a *Authenticator) Authenticate(c *gin.Context) bool {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		response.Unauthorized(c, "缺少认证头")
		c.Abort()
		return false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		response.Unauthorized(c, "认证头格式无效")
		c.Abort()
		return false
	}

	claims, err := a.jwtMgr.ParseToken(parts[1])
	if err != nil || claims.ExpiresAt == nil {
		response.Unauthorized(c, "Token 无效或已过期")
		c.Abort()
		return false
	}

	if a.blacklist != nil {
		revoked, err := a.blacklist.IsBlacklisted(c.Request.Context(), claims.ID)
		if err != nil {
			// Redis 出错时降级放行，签名与有效期已校验
			a.logger.Warn("查询 Token 黑名单失败", zap.Error(err))
		} else if revoked {
			response.Unauthorized(c, "Token 已注销")
			c.Abort()
			return false
		}
	}

	c.Set(ContextUsername, claims.Username)
	c.Set(ContextRole, claims.Role)
	c.Set(ContextTokenJTI, claims.ID)
	c.Set(ContextTokenExp, claims.ExpiresAt.Time)
	return true
}

// JWTAuth JWT 认证中间件
func (a *Authenticator) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.Authenticate(c) {
			return
		}
		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前用户是否具有指定角色之一
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists {
			response.Unauthorized(c, "未认证")
			c.Abort()
			return
		}

		userRole, _ := role.(string)
		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, "无权限访问")
		c.Abort()
	}
}
