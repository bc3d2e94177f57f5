package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/restoflow/websrm-adapter/internal/config"
	"github.com/restoflow/websrm-adapter/internal/presentation/http/handler"
	"github.com/restoflow/websrm-adapter/internal/presentation/http/middleware"
	"github.com/restoflow/websrm-adapter/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Transaction *handler.TransactionHandler
	Queue       *handler.QueueHandler
	Auth        *handler.AuthHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager *utils.JWTManager
	Cfg        *config.Config
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Per-client rate limiter
		rateLimiter := middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		v1.Use(rateLimiter.Middleware())

		// Auth routes
		v1.POST("/auth/refresh", h.Auth.Refresh)

		// Point-of-sale routes
		v1.POST("/transactions", h.Transaction.Submit)

		// Queue inspection routes
		queue := v1.Group("/queue")
		{
			queue.GET("", h.Queue.List)
			queue.GET("/stats", h.Queue.Stats)
			queue.GET("/:id", h.Queue.Get)
			queue.GET("/:id/receipt", h.Queue.Receipt)
		}

		// Operator actions require authentication
		protected := v1.Group("/queue")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		{
			protected.POST("/:id/requeue", middleware.RequireRole("operator", "admin"), h.Queue.Requeue)
			protected.POST("/:id/cancel", middleware.RequireRole("operator", "admin"), h.Queue.Cancel)
		}
	}

	return router
}
