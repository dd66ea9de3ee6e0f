package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt"
	"github.com/zemenay/techpulse-api/internal/config"
)

// TokenType 定义token类型
type TokenType string

const (
	// AccessToken 访问令牌，用于访问资源
	AccessToken TokenType = "access"
	// RefreshToken 刷新令牌，用于获取新的访问令牌
	RefreshToken TokenType = "refresh"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token has been revoked")
	ErrTokenType    = errors.New("wrong token type")
)

// Claims 自定义JWT声明结构体，StandardClaims.Id 为令牌ID
type Claims struct {
	UserID uint      `json:"user_id"`
	Role   string    `json:"role"`
	Type   TokenType `json:"type"`
	jwt.StandardClaims
}

// Identity 从声明中得到调用者身份
func (c *Claims) Identity() *Identity {
	return &Identity{UserID: c.UserID, Role: c.Role}
}

// TokenPair 包含访问令牌和刷新令牌
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"` // 访问令牌过期时间（秒）
}

// TokenManager 负责签发、解析、撤销令牌
type TokenManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	buffer     time.Duration
	blacklist  Blacklist
	ids        *snowflake.Node
}

// NewTokenManager 创建令牌管理器
func NewTokenManager(cfg config.JWTConfig, blacklist Blacklist, ids *snowflake.Node) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("jwt secret_key is empty")
	}
	if blacklist == nil {
		blacklist = NewMemoryBlacklist()
	}
	if ids == nil {
		node, err := snowflake.NewNode(0)
		if err != nil {
			return nil, err
		}
		ids = node
	}
	return &TokenManager{
		secret:     []byte(cfg.SecretKey),
		issuer:     cfg.Issuer,
		accessTTL:  time.Duration(cfg.AccessExpireSeconds) * time.Second,
		refreshTTL: time.Duration(cfg.RefreshExpireSeconds) * time.Second,
		buffer:     time.Duration(cfg.BufferSeconds) * time.Second,
		blacklist:  blacklist,
		ids:        ids,
	}, nil
}

// GenerateTokenPair 生成访问令牌和刷新令牌对
func (m *TokenManager) GenerateTokenPair(id Identity) (*TokenPair, error) {
	accessToken, err := m.generateToken(id, AccessToken, m.accessTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, err := m.generateToken(id, RefreshToken, m.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(m.accessTTL.Seconds()),
	}, nil
}

// generateToken 创建指定类型的JWT令牌
func (m *TokenManager) generateToken(id Identity, tokenType TokenType, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: id.UserID,
		Role:   id.Role,
		Type:   tokenType,
		StandardClaims: jwt.StandardClaims{
			Id:        m.ids.Generate().String(),
			ExpiresAt: now.Add(ttl).Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    m.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("签名令牌失败: %w", err)
	}
	return signed, nil
}

// Parse 解析并校验令牌类型与撤销状态
func (m *TokenManager) Parse(ctx context.Context, tokenString string, want TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Type != want {
		return nil, ErrTokenType
	}

	revoked, err := m.blacklist.Contains(ctx, claims.Id)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Refresh 使用刷新令牌换取新的令牌对，旧刷新令牌随即失效
func (m *TokenManager) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := m.Parse(ctx, refreshToken, RefreshToken)
	if err != nil {
		return nil, err
	}
	if err := m.Revoke(ctx, claims); err != nil {
		return nil, err
	}
	return m.GenerateTokenPair(*claims.Identity())
}

// Revoke 撤销令牌（登出时使用）
func (m *TokenManager) Revoke(ctx context.Context, claims *Claims) error {
	return m.blacklist.Add(ctx, claims.Id, time.Unix(claims.ExpiresAt, 0))
}

// ExpiresSoon 令牌是否将在缓冲时间内过期
func (m *TokenManager) ExpiresSoon(claims *Claims) bool {
	return time.Until(time.Unix(claims.ExpiresAt, 0)) < m.buffer
}
