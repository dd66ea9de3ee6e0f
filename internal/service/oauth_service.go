package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/zemenay/techpulse-api/internal/config"
	"github.com/zemenay/techpulse-api/internal/dto"
	"github.com/zemenay/techpulse-api/internal/model"
	"github.com/zemenay/techpulse-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleUserInfo Google用户信息
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	Picture       string `json:"picture"`
}

// OAuthService Google第三方登录
type OAuthService struct {
	conf        *oauth2.Config
	userInfoURL string
	users       repository.UserRepository
	login       *UserService
	logger      *zap.SugaredLogger
}

// NewOAuthService 创建Google登录服务，未配置时返回nil
func NewOAuthService(cfg config.GoogleConfig, users repository.UserRepository, login *UserService, logger *zap.SugaredLogger) *OAuthService {
	if !cfg.Enabled() {
		return nil
	}
	return &OAuthService{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
		users:       users,
		login:       login,
		logger:      logger,
	}
}

// NewState 生成随机state
func NewState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// AuthCodeURL Google授权地址
func (s *OAuthService) AuthCodeURL(state string) (string, error) {
	if s == nil {
		return "", ErrOAuthDisabled
	}
	return s.conf.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// Callback 用授权码换取令牌并登录，首次登录时自动注册或绑定同邮箱账号
func (s *OAuthService) Callback(ctx context.Context, code string) (*dto.LoginResponse, error) {
	if s == nil {
		return nil, ErrOAuthDisabled
	}
	if code == "" {
		return nil, ErrOAuthState
	}

	token, err := s.conf.Exchange(ctx, code)
	if err != nil {
		s.logger.Warnf("Google授权码交换失败: %v", err)
		return nil, ErrOAuthState
	}

	info, err := s.fetchUserInfo(ctx, s.conf.Client(ctx, token))
	if err != nil {
		return nil, err
	}
	if !info.VerifiedEmail {
		return nil, ErrInvalidCredentials
	}

	user, err := s.findOrCreate(ctx, info)
	if err != nil {
		return nil, err
	}
	if user.Status != 1 {
		return nil, ErrUserDisabled
	}
	return s.login.issue(user)
}

// fetchUserInfo 获取Google用户信息，网络错误时重试
func (s *OAuthService) fetchUserInfo(ctx context.Context, client *http.Client) (*GoogleUserInfo, error) {
	var info GoogleUserInfo
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 500 {
				return fmt.Errorf("获取用户信息失败: %d", resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(fmt.Errorf("获取用户信息失败: %d", resp.StatusCode))
			}
			return json.NewDecoder(resp.Body).Decode(&info)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("获取Google用户信息失败: %w", err)
	}
	if info.ID == "" || info.Email == "" {
		return nil, errors.New("Google用户信息不完整")
	}
	return &info, nil
}

func (s *OAuthService) findOrCreate(ctx context.Context, info *GoogleUserInfo) (*model.User, error) {
	user, err := s.users.GetByGoogleID(ctx, info.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}

	googleID := info.ID
	email := normalizeEmail(info.Email)

	// 已有同邮箱账号则绑定
	user, err = s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		user.GoogleID = &googleID
		if user.Image == "" {
			user.Image = info.Picture
		}
		if err := s.users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("绑定Google账号失败: %w", err)
		}
		s.logger.Infof("用户 %d 绑定Google账号", user.ID)
		return user, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}

	name := info.Name
	if name == "" {
		name = info.GivenName
	}
	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	user = &model.User{
		Name:     name,
		Email:    email,
		Image:    info.Picture,
		Role:     model.RoleUser,
		GoogleID: &googleID,
		Status:   1,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}
	s.logger.Infof("Google用户注册成功: id=%d", user.ID)
	return user, nil
}
