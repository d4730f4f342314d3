package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/foodsecurity/foodshare/internal/domain/models"
	"github.com/foodsecurity/foodshare/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(
	donationHandler *handlers.DonationHandler,
	authHandler *handlers.AuthHandler,
	reportsHandler *handlers.ReportsHandler,
	verifier handlers.TokenVerifier,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(metricsMiddleware())

	r.POST("/api/auth/register", authHandler.Register)
	r.POST("/api/auth/login", authHandler.Login)

	authed := r.Group("/api", handlers.AuthRequired(verifier))
	{
		authed.GET("/auth/me", authHandler.Me)

		authed.GET("/donations", donationHandler.List)
		authed.POST("/donations", donationHandler.Create)
		authed.GET("/donations/:id", donationHandler.Get)
		authed.POST("/donations/:id/claim", donationHandler.Claim)
		authed.POST("/donations/:id/complete", donationHandler.Complete)

		admin := authed.Group("", handlers.RequireRole(models.RoleAdmin))
		{
			admin.PATCH("/donations/:id", donationHandler.Update)
			admin.DELETE("/donations/:id", donationHandler.Delete)
		}

		reports := authed.Group("", handlers.RequireRole(models.RoleAnalyst, models.RoleAdmin))
		{
			reports.GET("/reports/summary", reportsHandler.Summary)
		}
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
