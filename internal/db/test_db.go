package db

import (
	"fmt"

	appLogger "github.com/storefront/storefront-backend/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory SQLite database with every model
// migrated. Each call gets its own database.
func SetupTestDB() (*gorm.DB, error) {
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open test database: %w", err)
	}

	// a second connection would see a different empty database
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get test database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := conn.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}
	return conn, nil
}

// CleanupTestDB closes a database returned by SetupTestDB.
func CleanupTestDB(conn *gorm.DB) {
	sqlDB, err := conn.DB()
	if err == nil {
		err = sqlDB.Close()
	}
	if err != nil {
		appLogger.Warn("Failed to close test database", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
