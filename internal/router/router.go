// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/relaystation/backend/internal/config"
	"github.com/relaystation/backend/internal/feed"
	"github.com/relaystation/backend/internal/handlers"
	"github.com/relaystation/backend/internal/middleware"
	"github.com/relaystation/backend/internal/services"
	"github.com/relaystation/backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	feedClient := feed.NewClient(cfg.Feed)
	syncService := services.NewSyncService(db, feedClient, cfg)
	verifyService := services.NewVerifyService(db, cfg)
	proxyService := services.NewProxyService(cfg)
	dealService := services.NewDealService(db)
	trackingService := services.NewTrackingService(db)
	authService := services.NewAuthService(db, cfg)
	adminService := services.NewAdminService(db)

	// Initialize handlers
	pipelineHandler := handlers.NewPipelineHandler(syncService, verifyService, cfg)
	proxyHandler := handlers.NewProxyHandler(proxyService, cfg)
	dealHandler := handlers.NewDealHandler(dealService)
	trackingHandler := handlers.NewTrackingHandler(trackingService)
	authHandler := handlers.NewAuthHandler(authService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Pipeline triggers, invoked by cron or the admin dashboard
		pipeline := v1.Group("")
		pipeline.Use(middleware.SyncAuthRequired(cfg.Sync.Secret))
		{
			pipeline.POST("/sync-deals", pipelineHandler.SyncDeals)
			pipeline.POST("/verify-deal-images", pipelineHandler.VerifyDealImages)
		}

		// Image proxy for client-side <img> fallbacks
		v1.GET("/image-proxy", middleware.ProxyRateLimit(), proxyHandler.ProxyImage)

		// Public deal reads
		deals := v1.Group("/deals")
		{
			deals.GET("", dealHandler.GetDeals)
			deals.GET("/:id", dealHandler.GetDeal)
			deals.GET("/:id/price-history", dealHandler.GetPriceHistory)
		}

		// Engagement tracking
		track := v1.Group("/track")
		{
			track.POST("/click", trackingHandler.TrackClick)
			track.POST("/share", trackingHandler.TrackShare)
			track.GET("/stats", trackingHandler.GetStats)
		}

		// Authentication
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.AuthRateLimit(), authHandler.Login)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/category-rules", adminHandler.GetCategoryRules)
			admin.GET("/cron-health", adminHandler.GetCronHealth)
			admin.POST("/deals/:id/retry-image", pipelineHandler.RetryDealImage)
		}
	}

	return r
}
