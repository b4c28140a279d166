package database

import (
	"path/filepath"
	"testing"

	"github.com/sankofalabs/memorial/backend/internal/donations"
	"go.uber.org/zap"
)

func TestOpenSQLiteCreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memorial.db")

	db, err := OpenSQLite(path, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected open error: %v", err)
	}

	for _, table := range []string{"candles", "tributes", "gallery", "donations", "db_migrations"} {
		if !db.Migrator().HasTable(table) {
			t.Fatalf("expected table %s to exist", table)
		}
	}
}

func TestMigrationsApplyOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memorial.db")

	db, err := OpenSQLite(path, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected open error: %v", err)
	}
	var firstCount int64
	if err := db.Model(&migrationRecord{}).Count(&firstCount).Error; err != nil {
		t.Fatalf("unexpected count error: %v", err)
	}
	if firstCount == 0 {
		t.Fatalf("expected at least one applied migration")
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unexpected db error: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}

	reopened, err := OpenSQLite(path, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected reopen error: %v", err)
	}
	var secondCount int64
	if err := reopened.Model(&migrationRecord{}).Count(&secondCount).Error; err != nil {
		t.Fatalf("unexpected count error: %v", err)
	}
	if secondCount != firstCount {
		t.Fatalf("expected migrations to apply once, first %d second %d", firstCount, secondCount)
	}
}

func TestBackfillAnonymousDonationNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memorial.db")

	db, err := OpenSQLite(path, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected open error: %v", err)
	}

	row := donations.Donation{Name: "", IsAnonymous: true, Amount: 50, Reference: "ref-anon"}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}
	if err := backfillAnonymousDonationNames(db); err != nil {
		t.Fatalf("unexpected migration error: %v", err)
	}

	var stored donations.Donation
	if err := db.Where("reference = ?", "ref-anon").Take(&stored).Error; err != nil {
		t.Fatalf("unexpected lookup error: %v", err)
	}
	if stored.Name != donations.AnonymousName {
		t.Fatalf("expected placeholder name, got %q", stored.Name)
	}
}
