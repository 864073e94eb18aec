package database

import (
	"context"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultDSN is a process-private in-memory database. Nothing written to it
// survives a restart.
const DefaultDSN = "file:contentiq?mode=memory&cache=shared"

// DB wraps the gorm connection
type DB struct {
	*gorm.DB
}

// Open opens the SQLite store behind dsn and sizes its connection pool.
// In-memory databases vanish with their last connection, so at least one
// idle connection is always kept.
func Open(dsn string, maxOpenConns, maxIdleConns int) (*DB, error) {
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if maxOpenConns < 1 {
		maxOpenConns = 1
	}
	if maxIdleConns < 1 {
		maxIdleConns = 1
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: gormDB}, nil
}

// NewDBFromGorm wraps an existing gorm connection, mostly for tests.
func NewDBFromGorm(gormDB *gorm.DB) *DB {
	return &DB{DB: gormDB}
}

// Migrate creates or updates the analyses table
func (db *DB) Migrate() error {
	if err := db.AutoMigrate(&Analysis{}); err != nil {
		return fmt.Errorf("failed to migrate analyses: %w", err)
	}
	return nil
}

// Ping checks the underlying connection
func (db *DB) Ping(ctx context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
