package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zemenay/techpulse-api/internal/logger"
	"github.com/zemenay/techpulse-api/pkg/auth"
	"github.com/zemenay/techpulse-api/pkg/response"
)

const (
	ctxIdentity = "identity"
	ctxClaims   = "claims"
)

// Authenticator 解析Bearer令牌并把调用者身份放入请求上下文
type Authenticator struct {
	tokens *auth.TokenManager
}

// NewAuthenticator 创建认证中间件
func NewAuthenticator(tokens *auth.TokenManager) *Authenticator {
	return &Authenticator{tokens: tokens}
}

// bearerToken 从Authorization头中取出令牌
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// authenticate 校验访问令牌，成功时写入上下文
func (a *Authenticator) authenticate(c *gin.Context) error {
	token, ok := bearerToken(c)
	if !ok {
		return errors.New("missing bearer token")
	}
	claims, err := a.tokens.Parse(c.Request.Context(), token, auth.AccessToken)
	if err != nil {
		return err
	}
	// 令牌即将过期时提示客户端刷新
	if a.tokens.ExpiresSoon(claims) {
		c.Header("X-Token-Expire-Soon", "true")
	}
	c.Set(ctxClaims, claims)
	c.Set(ctxIdentity, claims.Identity())
	return nil
}

// JWTAuth 必须登录
func (a *Authenticator) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.authenticate(c); err != nil {
			logger.Warnf("认证失败: %v", err)
			response.Unauthorized(c, "Unauthorized", err)
			return
		}
		c.Next()
	}
}

// OptionalAuth 可选登录，令牌缺失或无效时按匿名用户处理
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := bearerToken(c); ok {
			if err := a.authenticate(c); err != nil {
				logger.Warnf("忽略无效令牌: %v", err)
			}
		}
		c.Next()
	}
}

// AdminAuth 需要管理员权限
func (a *Authenticator) AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.authenticate(c); err != nil {
			response.Unauthorized(c, "Unauthorized", err)
			return
		}
		if !CallerFrom(c).IsAdmin() {
			response.Forbidden(c, "Forbidden", nil)
			return
		}
		c.Next()
	}
}

// CallerFrom 当前调用者，匿名时返回nil
func CallerFrom(c *gin.Context) *auth.Identity {
	v, ok := c.Get(ctxIdentity)
	if !ok {
		return nil
	}
	id, _ := v.(*auth.Identity)
	return id
}

// ClaimsFrom 当前访问令牌的声明
func ClaimsFrom(c *gin.Context) *auth.Claims {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
