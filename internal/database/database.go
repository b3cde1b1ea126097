package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/goplaynow/playdate-api/internal/config"
	"github.com/goplaynow/playdate-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm/logger"
)

// Connect opens the configured database and migrates the schema.
func Connect(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(cfg.DatabaseType) {
	case "postgres", "postgresql":
		dialector = postgres.Open(cfg.DatabaseURL)
	case "sqlite", "sqlite3", "":
		dialector = sqlite.Open(cfg.DatabasePath)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DatabaseType)
	}

	db, err := gorm.Open(dialector, Options(log))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Options is shared with tests so both translate duplicate-key errors.
// SQL warnings go to log; a missing row is an expected lookup result and is
// not logged.
func Options(log *zap.Logger) *gorm.Config {
	if log == nil {
		log = zap.NewNop()
	}
	return &gorm.Config{
		TranslateError: true,
		Logger:         newLogger(log),
	}
}

func newLogger(log *zap.Logger) logger.Interface {
	w, err := zap.NewStdLogAt(log.Named("gorm"), zapcore.WarnLevel)
	if err != nil {
		return logger.Discard
	}
	return logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.ParentProfile{},
		&models.Interest{},
		&models.Child{},
		&models.Playdate{},
		&models.ParticipantEntry{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	return nil
}
