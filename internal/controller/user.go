package controller

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/zemenay/techpulse-api/internal/dto"
	"github.com/zemenay/techpulse-api/internal/middleware"
	"github.com/zemenay/techpulse-api/internal/service"
	"github.com/zemenay/techpulse-api/pkg/response"
	"go.uber.org/zap"
)

const oauthStateKey = "oauth_state"

// UserApi 用户注册、登录和第三方登录
type UserApi struct {
	logger *zap.SugaredLogger
	users  *service.UserService
	google *service.OAuthService
}

// NewUserApi 创建用户控制器，google为nil时第三方登录返回404
func NewUserApi(users *service.UserService, google *service.OAuthService, logger *zap.SugaredLogger) *UserApi {
	return &UserApi{logger: logger, users: users, google: google}
}

// Register 用户注册
func (api *UserApi) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}
	resp, err := api.users.Register(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, api.logger, "用户注册", err)
		return
	}
	response.Created(c, resp)
}

// Login 用户登录
func (api *UserApi) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}
	resp, err := api.users.Login(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, api.logger, "用户登录", err)
		return
	}
	response.Success(c, resp)
}

// RefreshToken 刷新令牌
func (api *UserApi) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "refreshToken is required", err)
		return
	}
	pair, err := api.users.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(c, api.logger, "刷新令牌", err)
		return
	}
	response.Success(c, pair)
}

// Logout 登出，可同时撤销刷新令牌
func (api *UserApi) Logout(c *gin.Context) {
	var req dto.RefreshTokenRequest
	// 请求体可选
	_ = c.ShouldBindJSON(&req)

	if err := api.users.Logout(c.Request.Context(), middleware.ClaimsFrom(c), req.RefreshToken); err != nil {
		writeServiceError(c, api.logger, "用户登出", err)
		return
	}
	response.Success(c, dto.SuccessResponse{Success: true})
}

// Me 当前用户信息
func (api *UserApi) Me(c *gin.Context) {
	resp, err := api.users.Me(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		writeServiceError(c, api.logger, "获取用户信息", err)
		return
	}
	response.Success(c, resp)
}

// GoogleLogin 跳转到Google授权页，state保存在session中
func (api *UserApi) GoogleLogin(c *gin.Context) {
	state, err := service.NewState()
	if err != nil {
		writeServiceError(c, api.logger, "生成OAuth state", err)
		return
	}
	url, err := api.google.AuthCodeURL(state)
	if err != nil {
		writeServiceError(c, api.logger, "Google登录", err)
		return
	}

	session := sessions.Default(c)
	session.Set(oauthStateKey, state)
	if err := session.Save(); err != nil {
		writeServiceError(c, api.logger, "保存session", err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback Google授权回调，校验state后登录
func (api *UserApi) GoogleCallback(c *gin.Context) {
	session := sessions.Default(c)
	saved, _ := session.Get(oauthStateKey).(string)
	session.Delete(oauthStateKey)
	_ = session.Save()

	if saved == "" || c.Query("state") != saved {
		response.BadRequest(c, service.ErrOAuthState.Error(), nil)
		return
	}
	resp, err := api.google.Callback(c.Request.Context(), c.Query("code"))
	if err != nil {
		writeServiceError(c, api.logger, "Google登录回调", err)
		return
	}
	response.Success(c, resp)
}
