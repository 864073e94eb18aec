package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/palemoky/contentiq/internal/database"
)

// Pinger reports whether the store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatsSource provides analysis counts
type StatsSource interface {
	GetStatistics(ctx context.Context) (*database.Statistics, error)
}

// HealthHandler handles health check requests
func HealthHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "store connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
		})
	}
}

// StatsHandler returns analysis counts per state
func StatsHandler(repo StatsSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := repo.GetStatistics(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "failed to get statistics",
			})
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}
