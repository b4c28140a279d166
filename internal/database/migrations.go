package database

import (
	"errors"
	"time"

	"github.com/sankofalabs/memorial/backend/internal/donations"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrationBackfillAnonymousNames = "2026-07-18_backfill_anonymous_donation_names"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationBackfillAnonymousNames, apply: backfillAnonymousDonationNames},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// Early donation rows were written with an empty name when the supporter asked
// to stay anonymous; the placeholder is now assigned at write time.
func backfillAnonymousDonationNames(db *gorm.DB) error {
	return db.Model(&donations.Donation{}).
		Where("is_anonymous = ? AND name = ?", true, "").
		Update("name", donations.AnonymousName).Error
}
