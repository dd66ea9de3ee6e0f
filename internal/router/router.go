package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zemenay/techpulse-api/internal/config"
	"github.com/zemenay/techpulse-api/internal/controller"
	"github.com/zemenay/techpulse-api/internal/logger"
	"github.com/zemenay/techpulse-api/internal/middleware"
)

const sessionName = "techpulse_session"

// Deps 路由依赖的控制器与中间件
type Deps struct {
	Config       *config.Config
	Auth         *middleware.Authenticator
	Limiter      *middleware.IPRateLimiter
	Users        *controller.UserApi
	Articles     *controller.ArticleApi
	Interactions *controller.InteractionApi
	Taxonomy     *controller.TaxonomyApi
	Notification *controller.NotificationApi
	Health       *controller.HealthApi
}

// New 创建引擎并注册全局中间件和路由
func New(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		logger.GinLogger(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.Cors),
		middleware.Metrics(),
	)
	Setup(r, deps)
	return r
}

// Setup 设置API路由
func Setup(r *gin.Engine, deps Deps) {
	r.GET("/health", deps.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API 路由组，写操作按IP限流
	api := r.Group("/api", middleware.RateLimit(deps.Config.RateLimit, deps.Limiter))

	setupAuthRoutes(api, deps)
	setupArticleRoutes(api, deps)
	setupTaxonomyRoutes(api, deps)
	setupNotificationRoutes(api, deps)
}

// setupAuthRoutes 设置认证与用户相关路由
func setupAuthRoutes(api *gin.RouterGroup, deps Deps) {
	userApi := deps.Users

	authRoutes := api.Group("/auth")
	{
		// 注册
		authRoutes.POST("/register", userApi.Register)
		// 登录
		authRoutes.POST("/login", userApi.Login)
		// 刷新令牌
		authRoutes.POST("/refresh", userApi.RefreshToken)
		// 登出
		authRoutes.POST("/logout", deps.Auth.JWTAuth(), userApi.Logout)
	}

	// Google登录，state保存在cookie session中
	store := cookie.NewStore([]byte(deps.Config.OAuth.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/api/auth/google",
		MaxAge:   600,
		HttpOnly: true,
	})
	googleRoutes := api.Group("/auth/google", sessions.Sessions(sessionName, store))
	{
		googleRoutes.GET("/login", userApi.GoogleLogin)
		googleRoutes.GET("/callback", userApi.GoogleCallback)
	}

	userRoutes := api.Group("/users", deps.Auth.JWTAuth())
	{
		// 获取当前用户信息
		userRoutes.GET("/me", userApi.Me)
	}
}

// setupArticleRoutes 设置文章及互动路由
func setupArticleRoutes(api *gin.RouterGroup, deps Deps) {
	articleApi := deps.Articles
	interactionApi := deps.Interactions

	// 公开路由，携带令牌时识别调用者
	publicRoutes := api.Group("/articles", deps.Auth.OptionalAuth())
	{
		// 文章列表
		publicRoutes.GET("", articleApi.List)
		// 全文搜索
		publicRoutes.GET("/search", articleApi.Search)
		// 文章详情
		publicRoutes.GET("/:id", articleApi.Get)
		// 点赞与评论
		publicRoutes.GET("/:id/interaction", interactionApi.Get)
	}

	// 需要认证的路由
	authRoutes := api.Group("/articles", deps.Auth.JWTAuth())
	{
		// 创建文章
		authRoutes.POST("", articleApi.Create)
		// 更新文章
		authRoutes.PUT("/:id", articleApi.Update)
		// 删除文章
		authRoutes.DELETE("/:id", articleApi.Delete)
		// 点赞或评论
		authRoutes.POST("/:id/interaction", interactionApi.Post)
		// 删除评论
		authRoutes.DELETE("/:id/interaction", interactionApi.Delete)
	}
}

// setupTaxonomyRoutes 设置分类和标签路由
func setupTaxonomyRoutes(api *gin.RouterGroup, deps Deps) {
	api.GET("/categories", deps.Taxonomy.Categories)
	api.GET("/tags", deps.Taxonomy.Tags)
}

// setupNotificationRoutes 设置通知路由
func setupNotificationRoutes(api *gin.RouterGroup, deps Deps) {
	notificationRoutes := api.Group("/notifications", deps.Auth.JWTAuth())
	{
		// 通知列表
		notificationRoutes.GET("", deps.Notification.List)
		// 标记已读
		notificationRoutes.PUT("/:id/read", deps.Notification.MarkRead)
	}
}
