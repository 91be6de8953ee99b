package db

import (
	"context"
	"fmt"
	"time"

	"github.com/storefront/storefront-backend/config"
	appLogger "github.com/storefront/storefront-backend/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// slowQueryWriter forwards gorm's slow query and error lines to the app logger.
type slowQueryWriter struct{}

func (slowQueryWriter) Printf(format string, args ...interface{}) {
	appLogger.Warn("Database query", map[string]interface{}{
		"detail": fmt.Sprintf(format, args...),
	})
}

func newGormLogger(threshold time.Duration) logger.Interface {
	if threshold <= 0 {
		return logger.Default.LogMode(logger.Silent)
	}
	return logger.New(slowQueryWriter{}, logger.Config{
		SlowThreshold:             threshold,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Initialize opens the Postgres connection pool described by cfg
func Initialize(cfg *config.DatabaseConfig) error {
	appLogger.Info("Connecting to database", map[string]interface{}{
		"host":     cfg.Host,
		"port":     cfg.Port,
		"database": cfg.DBName,
		"user":     cfg.User,
	})

	conn, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: newGormLogger(cfg.SlowThreshold),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}

	DB = conn
	appLogger.Info("Database connection established", map[string]interface{}{
		"max_idle_conns": cfg.MaxIdleConns,
		"max_open_conns": cfg.MaxOpenConns,
		"slow_threshold": cfg.SlowThreshold.String(),
	})
	return nil
}

// Close releases the pool; safe to call when Initialize failed
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func GetDB() *gorm.DB {
	return DB
}
