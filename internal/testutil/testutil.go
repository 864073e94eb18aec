// Package testutil provides shared utilities for testing.
package testutil

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/palemoky/contentiq/internal/analysis"
	"github.com/palemoky/contentiq/internal/database"
	"github.com/palemoky/contentiq/internal/estimator"
)

// SetupTestDB creates an in-memory SQLite database with migrations applied.
// Returns the DB wrapper and Repository. Automatically cleans up on test completion.
func SetupTestDB(t *testing.T) (*database.DB, *database.Repository) {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "Failed to open in-memory database")

	// every new connection to :memory: is a fresh empty database
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db := database.NewDBFromGorm(gormDB)
	require.NoError(t, db.Migrate(), "Failed to run migrations")

	repo := database.NewRepository(db)

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db, repo
}

// SetupTestService creates an analysis service over a fresh test database.
// The service is closed before the database on cleanup.
func SetupTestService(t *testing.T, delay time.Duration) (*analysis.Service, *database.DB) {
	t.Helper()

	db, repo := SetupTestDB(t)

	est, err := estimator.New(16)
	require.NoError(t, err)

	svc := analysis.NewService(repo, est, analysis.Options{Delay: delay, TTL: time.Hour}, zaptest.NewLogger(t))
	t.Cleanup(svc.Close)

	return svc, db
}

// SetupTestGin creates a test Gin engine with test mode enabled.
func SetupTestGin() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}
