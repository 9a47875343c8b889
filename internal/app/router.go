package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"carshare/internal/auth"
	"carshare/internal/handler"
	"carshare/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	AuthHandler *handler.AuthHandler
	RideHandler *handler.RideHandler
	AuthService *auth.Service
	RedisClient *redis.Client
	NewRelicApp *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	requireAuth := middleware.AuthMiddleware(deps.AuthService)

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Authentication routes.
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/login", deps.AuthHandler.Login)
			authRoutes.POST("/logout", requireAuth, deps.AuthHandler.Logout)
		}

		// Ride routes. Idempotency keys are scoped per rider, so the
		// middleware sits behind authentication.
		rides := v1.Group("/rides", requireAuth, middleware.IdempotencyMiddleware(deps.RedisClient))
		{
			rides.POST("", deps.RideHandler.RegisterRide)
			rides.GET("/available", deps.RideHandler.ListAvailable)
			rides.POST("/start", deps.RideHandler.StartRide)
			rides.POST("/end", deps.RideHandler.EndRide)
		}

		// Receipt routes.
		receipts := v1.Group("/receipts", requireAuth)
		{
			receipts.GET("", deps.RideHandler.ListReceipts)
		}
	}

	return router
}
