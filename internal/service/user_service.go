package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zemenay/techpulse-api/internal/dto"
	"github.com/zemenay/techpulse-api/internal/model"
	"github.com/zemenay/techpulse-api/internal/repository"
	"github.com/zemenay/techpulse-api/pkg/auth"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserService 用户注册、登录与令牌管理
type UserService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	logger *zap.SugaredLogger
}

// NewUserService 创建用户服务
func NewUserService(users repository.UserRepository, tokens *auth.TokenManager, logger *zap.SugaredLogger) *UserService {
	return &UserService{users: users, tokens: tokens, logger: logger}
}

// Register 用户注册
func (s *UserService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.LoginResponse, error) {
	user, err := s.createUser(ctx, req.Name, req.Email, req.Password, model.RoleUser)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// CreateAdmin 创建管理员账号，供命令行使用
func (s *UserService) CreateAdmin(ctx context.Context, name, email, password string) (*model.User, error) {
	return s.createUser(ctx, name, email, password, model.RoleAdmin)
}

func (s *UserService) createUser(ctx context.Context, name, email, password, role string) (*model.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("密码加密失败: %w", err)
	}

	user := &model.User{
		Name:     strings.TrimSpace(name),
		Email:    normalizeEmail(email),
		Password: string(hashed),
		Role:     role,
		Status:   1,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}
	s.logger.Infof("用户注册成功: id=%d role=%s", user.ID, role)
	return user, nil
}

// Login 邮箱密码登录
func (s *UserService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	// OAuth用户没有密码
	if user.Password == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status != 1 {
		return nil, ErrUserDisabled
	}
	return s.issue(user)
}

// Refresh 使用刷新令牌换取新令牌对
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	pair, err := s.tokens.Refresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrTokenInvalid) || errors.Is(err, auth.ErrTokenRevoked) || errors.Is(err, auth.ErrTokenType) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return pair, nil
}

// Logout 撤销当前访问令牌，以及可选的刷新令牌
func (s *UserService) Logout(ctx context.Context, access *auth.Claims, refreshToken string) error {
	if access != nil {
		if err := s.tokens.Revoke(ctx, access); err != nil {
			return fmt.Errorf("撤销访问令牌失败: %w", err)
		}
	}
	if refreshToken == "" {
		return nil
	}
	claims, err := s.tokens.Parse(ctx, refreshToken, auth.RefreshToken)
	if err != nil {
		// 刷新令牌已失效时无需处理
		s.logger.Debugf("忽略无效的刷新令牌: %v", err)
		return nil
	}
	if access != nil && claims.UserID != access.UserID {
		return ErrForbidden
	}
	return s.tokens.Revoke(ctx, claims)
}

// Me 当前用户信息
func (s *UserService) Me(ctx context.Context, caller *auth.Identity) (*dto.UserResponse, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	user, err := s.users.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// issue 为用户签发令牌对
func (s *UserService) issue(user *model.User) (*dto.LoginResponse, error) {
	pair, err := s.tokens.GenerateTokenPair(auth.Identity{UserID: user.ID, Role: user.Role})
	if err != nil {
		return nil, fmt.Errorf("生成令牌失败: %w", err)
	}
	return &dto.LoginResponse{User: dto.NewUserResponse(user), Tokens: pair}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
