package router

import (
	"github.com/gin-gonic/gin"
	"github.com/memberhub/registry-api/internal/auth"
	"github.com/memberhub/registry-api/internal/config"
	"github.com/memberhub/registry-api/internal/member"
	"github.com/memberhub/registry-api/internal/meta"
	"github.com/memberhub/registry-api/internal/shared/database"
	"github.com/memberhub/registry-api/internal/shared/middleware"
	"github.com/memberhub/registry-api/internal/shared/qrcode"
	"github.com/memberhub/registry-api/internal/shared/storage"
	"github.com/memberhub/registry-api/internal/shared/token"
)

// Setup configures all application-specific routes using dependency injection
func Setup(router *gin.Engine, cfg *config.Config, db *database.DB, store *storage.Store) {
	// Meta handler (health check)
	metaHandler := meta.NewHandler(cfg, db)
	router.GET("/health", metaHandler.Health)

	// repository
	memberRepository := member.NewMemberRepository()

	// shared services
	tokenManager := token.NewJWTManager(cfg)
	codeGenerator := qrcode.New(cfg, store)

	// service
	authService := auth.NewAuthService(db.DB, tokenManager)
	memberService := member.NewMemberService(db.DB, memberRepository, store, codeGenerator)

	// handler
	authHandler := auth.NewAuthHandler(authService)
	memberHandler := member.NewMemberHandler(memberService)

	// Stored photos and code images, served as-is
	router.Static(cfg.Storage.PublicPrefix, store.Root())

	// Public verification URL encoded in the code images
	router.GET("/verify/:id", memberHandler.Verify)

	// API v1 routes
	authV1 := router.Group("/api/v1/auth")
	{
		authV1.POST("/login", authHandler.Login)
	}

	// Enrollment is public; everything else on members is moderator-only
	router.POST("/api/v1/members", memberHandler.Enroll)

	memberV1 := router.Group("/api/v1/members")
	memberV1.Use(middleware.JWT(cfg))
	{
		memberV1.GET("", memberHandler.List)
		memberV1.GET("/:id", memberHandler.Get)
		memberV1.DELETE("/:id", memberHandler.Delete)
		memberV1.GET("/:id/photo", memberHandler.Photo)
		memberV1.PATCH("/:id/status", memberHandler.SetStatus)
	}
}
