package database

import (
	"fmt"

	sqlite "github.com/glebarez/sqlite"
	"github.com/sankofalabs/memorial/backend/internal/candles"
	"github.com/sankofalabs/memorial/backend/internal/donations"
	"github.com/sankofalabs/memorial/backend/internal/gallery"
	"github.com/sankofalabs/memorial/backend/internal/tributes"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OpenSQLite establishes a SQLite connection and performs schema migrations.
func OpenSQLite(path string, logger *zap.Logger) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := applyMigrations(db, logger); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("database initialized", zap.String("path", path))
	}

	return db, nil
}

// Migrate creates or updates the schema for all record collections.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&candles.Candle{},
		&tributes.Tribute{},
		&gallery.Item{},
		&donations.Donation{},
		&migrationRecord{},
	)
}
