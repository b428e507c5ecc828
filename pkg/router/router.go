package router

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"dataset-feedback/backend/internal/api"
	"dataset-feedback/backend/pkg/di"
	"dataset-feedback/backend/pkg/errors"
	"dataset-feedback/backend/pkg/logger"
	"dataset-feedback/backend/pkg/middleware"
	"dataset-feedback/backend/pkg/observability"
)

// Router is the main router for the application.
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
}

// New creates a router with the shared middleware stack applied.
func New(container *di.Container) *Router {
	logger.SetGlobal(container.Logger)

	if container.Config.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
	}
}

// SetupRoutes registers all application routes.
func (r *Router) SetupRoutes() {
	r.Engine.Use(corsMiddleware())

	c := r.Container

	// Auth is optional on the public surface: anonymous users may read and
	// submit, a valid token unlocks the admin visibility in the services.
	optionalAuth := middleware.Auth(c.JWTService, false)
	requiredAuth := middleware.Auth(c.JWTService, true)

	submitLimiter := noopMiddleware()
	if c.Config.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(c.Logger, middleware.RateLimiterOptions{
			Limit: rate.Limit(c.Config.RateLimit.Limit),
			Burst: c.Config.RateLimit.Burst,
		})
		submitLimiter = limiter.Middleware()
	}

	adminHandler := api.NewAdminHandler(c.FeedbackQueryEngine, c.ModerationService)
	commentHandler := api.NewCommentHandler(c.CommentService, c.SuggestionService, c.SummaryService)
	utilizationHandler := api.NewUtilizationHandler(c.UtilizationService, c.SuggestionService)

	r.Engine.GET("/health", gin.WrapF(c.Health.HTTPHandler()))
	r.Engine.GET("/metrics", gin.WrapH(observability.MetricsHandler()))

	v1 := r.Engine.Group("/api/v1")

	public := v1.Group("/")
	public.Use(optionalAuth)
	{
		commentHandler.RegisterRoutes(public, submitLimiter)
		utilizationHandler.RegisterRoutes(public, submitLimiter)
	}

	protected := v1.Group("/")
	protected.Use(requiredAuth)
	{
		adminHandler.RegisterRoutes(protected)
	}
}

func noopMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Accept-Encoding, X-CSRF-Token, Authorization, Origin, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
