package rest

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/palemoky/contentiq/internal/analysis"
	"github.com/palemoky/contentiq/internal/api/middleware"
	"github.com/palemoky/contentiq/internal/api/rest/handler"
	"github.com/palemoky/contentiq/internal/config"
	"github.com/palemoky/contentiq/internal/database"
	"github.com/palemoky/contentiq/internal/web"
)

// SetupRouter sets up the Gin router with the pages and the JSON API.
// The returned limiter is nil when rate limiting is disabled.
func SetupRouter(cfg *config.Config, db *database.DB, repo *database.Repository, svc *analysis.Service, log *zap.Logger) (*gin.Engine, *middleware.RateLimiter, error) {
	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	router := gin.New()
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Recovery(log))

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}
	limit := func(c *gin.Context) { c.Next() }
	if rateLimiter != nil {
		limit = rateLimiter.Middleware()
	}

	// Pages
	pages := web.NewHandler(svc, log.Named("web"))
	if err := pages.Register(router, limit); err != nil {
		return nil, nil, err
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(middleware.CORS())
	{
		// Preflight, answered by the CORS middleware
		v1.OPTIONS("/*path", func(c *gin.Context) {})

		// Health check
		v1.GET("/health", handler.HealthHandler(db))

		// Statistics
		v1.GET("/stats", handler.StatsHandler(repo))

		// Analysis routes
		analysisHandler := handler.NewAnalysisHandler(svc)
		v1.POST("/estimate", limit, analysisHandler.Estimate)
		v1.POST("/analyses", limit, analysisHandler.CreateAnalysis)
		v1.GET("/analyses/:id", analysisHandler.GetAnalysis)
		v1.POST("/analyses/:id/start", limit, analysisHandler.StartAnalysis)
	}

	return router, rateLimiter, nil
}
