// Package postgres implements the domain repositories on PostgreSQL via GORM.
package postgres

import (
	"context"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aegisai/aegis/internal/config"
	"github.com/aegisai/aegis/internal/domain/models"
	"github.com/aegisai/aegis/pkg/errors"
	"github.com/aegisai/aegis/pkg/logger"
)

// NewDBConnection opens the PostgreSQL connection pool and verifies it.
func NewDBConnection(ctx context.Context, cfg *config.DatabaseConfig, log logger.Logger) (*gorm.DB, error) {
	if cfg == nil {
		return nil, errors.ErrInvalidConfig
	}

	log.Info(ctx, "connecting to postgres", logger.Fields{
		"host":     cfg.Host,
		"port":     cfg.Port,
		"database": cfg.Database,
	})

	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.ErrDatabaseOperation.WithCause(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.ErrDatabaseOperation.WithCause(err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, errors.ErrDatabaseOperation.WithCause(err)
	}

	log.Info(ctx, "postgres connection established")
	return db, nil
}

// AutoMigrate creates or updates the pipeline tables.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.MLEvent{},
		&models.LLMEvent{},
		&models.ModelProfile{},
		&models.DriftMetric{},
		&models.HealthScore{},
		&models.Alert{},
		&models.DeadLetterTask{},
	)
	if err != nil {
		return errors.ErrDatabaseOperation.WithCause(err)
	}
	return nil
}

// Close shuts the underlying pool down.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
