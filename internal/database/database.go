package database

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"automarket/chat/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the database for the given driver ("postgres" or "sqlite") and runs migrations.
func Connect(driver, dsn string) (*gorm.DB, error) {
	// Configure GORM logger
	customLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         customLogger,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("database: open %s: %w", driver, err)
	}

	if driver == "sqlite" {
		// SQLite has a single writer; one connection keeps transactions from tripping over each other.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("database: sqlite handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("database: enable foreign keys: %w", err)
		}
	}

	slog.Info("database: connection established", "driver", driver)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	slog.Info("database: migrated successfully")
	return db, nil
}

// Migrate creates or updates the chat schema.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(&models.User{}, &models.Room{}, &models.Membership{}, &models.Message{})
	if err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}
	return nil
}
