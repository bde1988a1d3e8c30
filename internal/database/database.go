package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/infinito-iitp/ca-portal-api/internal/config"
	"github.com/infinito-iitp/ca-portal-api/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func dialector(cfg *config.Config) gorm.Dialector {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return postgres.Open(cfg.DSN())
	case config.DriverSQLite:
		return sqlite.Open(cfg.DSN())
	default:
		return mysql.Open(cfg.DSN())
	}
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// NewGormLogger routes GORM's query log through slog.
func NewGormLogger(log *slog.Logger, level string) logger.Interface {
	return logger.New(
		slog.NewLogLogger(log.Handler(), slog.LevelInfo),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogLevel(level),
			IgnoreRecordNotFoundError: true,
		},
	)
}

func Connect(cfg *config.Config, log *slog.Logger) error {
	var err error
	DB, err = gorm.Open(dialector(cfg), &gorm.Config{
		Logger:         NewGormLogger(log, cfg.DBLogLevel),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("database connection established", "driver", cfg.DBDriver, "database", cfg.DBName)
	return nil
}

func Migrate(log *slog.Logger) error {
	log.Info("running database migrations")
	if err := DB.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := EnsureIndexes(DB, log); err != nil {
		return err
	}
	log.Info("database migrations completed")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (used for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
