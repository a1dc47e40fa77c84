package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/config"
	"resumeBuilder/internal/enhance"
	"resumeBuilder/internal/persistence"
	"resumeBuilder/internal/session"
)

// TokenBlacklist 同时负责查询与写入令牌黑名单。
type TokenBlacklist interface {
	middleware.RevocationChecker
	TokenRevoker
}

// Dependencies 汇总路由需要的协作方。可选项留空时对应功能降级：
// 无 Queue 不生成预览页，无 Previews 不返回预览链接，无 RateCounter 不限流，无 Scanner 不扫描。
type Dependencies struct {
	Config      *config.Config
	Logger      *slog.Logger
	Sessions    *session.Registry
	Resumes     *persistence.Adapter
	Enhancer    enhance.Enhancer
	Auth        middleware.TokenValidator
	Blacklist   TokenBlacklist
	Queue       TaskEnqueuer
	Images      ImageStore
	Previews    PreviewLinker
	Scanner     VirusScanner
	RateCounter redisRateCounter
	Subscriber  Subscriber
}

// RegisterRoutes 注册 API 路由，不包含 /api 前缀。
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	cfg := deps.Config

	var revocations middleware.RevocationChecker
	if deps.Blacklist != nil {
		revocations = deps.Blacklist
	}
	authMiddleware := middleware.AuthMiddleware(deps.Auth, revocations)

	sessionHandler := NewSessionHandler(deps.Sessions, deps.Logger)
	enhanceHandler := NewEnhanceHandler(deps.Sessions, deps.Enhancer, deps.RateCounter, cfg.Enhance.RateLimitPerHour, cfg.Enhance.Timeout, deps.Logger)
	resumeHandler := NewResumeHandler(deps.Sessions, deps.Resumes, deps.Queue, deps.Previews, cfg.Worker.MaxRetry, cfg.Worker.PreviewURLTTL)
	assetHandler := NewAssetHandler(deps.Sessions, deps.Images, deps.Scanner, deps.RateCounter, cfg.Upload)

	v1 := router.Group("/v1")
	{
		v1.GET("/styles", ListStyles)

		if deps.Subscriber != nil {
			wsHandler := NewWsHandler(deps.Subscriber, deps.Auth, revocations, deps.Logger, cfg.API.AllowedOrigins)
			v1.GET("/ws", wsHandler.HandleConnection)
		}

		v1.POST("/enhance-content", authMiddleware, enhanceHandler.EnhanceContent)

		authGroup := v1.Group("/auth")
		if deps.Blacklist != nil {
			authHandler := NewAuthHandler(deps.Blacklist)
			authGroup.POST("/logout", authMiddleware, authHandler.Logout)
		}

		sessions := v1.Group("/sessions")
		sessions.Use(authMiddleware)
		{
			sessions.POST("", sessionHandler.CreateSession)
			sessions.GET("/:id", sessionHandler.GetSession)
			sessions.DELETE("/:id", sessionHandler.DeleteSession)

			sessions.PUT("/:id/fields/:field", sessionHandler.UpdateField)
			sessions.PUT("/:id/profile/:field", sessionHandler.UpdateProfile)

			sessions.POST("/:id/lists/:list", sessionHandler.AppendItem)
			sessions.PUT("/:id/lists/:list/:index", sessionHandler.UpdateItem)
			sessions.DELETE("/:id/lists/:list/:index", sessionHandler.RemoveItem)

			sessions.POST("/:id/skills", sessionHandler.AddCategory)
			sessions.DELETE("/:id/skills/:category", sessionHandler.RemoveCategory)
			sessions.POST("/:id/skills/:category", sessionHandler.AddSkill)
			sessions.DELETE("/:id/skills/:category/:skill", sessionHandler.RemoveSkill)

			sessions.GET("/:id/preview", sessionHandler.Preview)
			sessions.POST("/:id/enhance", enhanceHandler.EnhanceSession)
			sessions.POST("/:id/profile-image", assetHandler.UploadProfileImage)

			sessions.POST("/:id/save", resumeHandler.SaveResume)
			sessions.POST("/:id/load/:resumeID", resumeHandler.LoadResume)
		}

		resumes := v1.Group("/resumes")
		resumes.Use(authMiddleware)
		{
			resumes.GET("", resumeHandler.ListResumes)
			resumes.GET("/:id", resumeHandler.GetResume)
		}
	}
}
