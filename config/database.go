package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/kalamitra/kalamitra-api/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// ConnectDatabase opens the database named by databaseURL. PostgreSQL URLs use
// the postgres driver; "sqlite://<path>", "file:" and ":memory:" use SQLite.
// logLevel sets gorm's SQL logging (see gormLogLevel).
func ConnectDatabase(databaseURL, logLevel string) error {
	if databaseURL == "" {
		return fmt.Errorf("database URL is empty")
	}

	db, err := gorm.Open(dialectorFor(databaseURL), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(gormLogLevel(logLevel)),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if isSQLite(databaseURL) {
		// SQLite allows a single writer; one connection keeps transactions serialized
		// and keeps in-memory databases shared.
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get database instance: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	DB = db
	log.Println("Database connection established successfully")
	return nil
}

// Migrate creates or updates the tables for every model
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Artisan{},
		&models.Product{},
		&models.Wishlist{},
		&models.Rating{},
		&models.Chat{},
		&models.Message{},
		&models.RevokedToken{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// SetDB replaces the database instance (primarily for testing)
func SetDB(db *gorm.DB) {
	DB = db
}

func dialectorFor(databaseURL string) gorm.Dialector {
	if isSQLite(databaseURL) {
		return sqlite.Open(strings.TrimPrefix(databaseURL, "sqlite://"))
	}
	return postgres.Open(databaseURL)
}

func isSQLite(databaseURL string) bool {
	return strings.HasPrefix(databaseURL, "sqlite://") ||
		strings.HasPrefix(databaseURL, "file:") ||
		databaseURL == ":memory:"
}

// gormLogLevel maps LOG_LEVEL to gorm's logger. "debug" logs every statement,
// "info" and "warn" log slow queries and errors.
func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.Info
	case "info", "warn":
		return logger.Warn
	case "error":
		return logger.Error
	case "silent", "off":
		return logger.Silent
	default:
		return logger.Warn
	}
}
