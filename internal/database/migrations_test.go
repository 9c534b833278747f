package database

import (
	"path/filepath"
	"testing"

	"github.com/MarcoPoloResearchLab/healthlog/backend/internal/records"
	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestApplyMigrationsNormalizesRecordDates(testContext *testing.T) {
	tempDir := testContext.TempDir()
	databasePath := filepath.Join(tempDir, "migration.db")

	database, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{})
	if err != nil {
		testContext.Fatalf("failed to open sqlite: %v", err)
	}

	if err := database.AutoMigrate(&records.Symptom{}, &records.Medication{}, &records.Note{}, &migrationRecord{}); err != nil {
		testContext.Fatalf("failed to migrate schema: %v", err)
	}

	legacy := []records.Symptom{
		{ID: "padded", Name: "Sleep", Severity: 3, Date: "2024-01-05", CreatedAt: "2024-01-05T08:00:00.000Z"},
		{ID: "loose", Name: "Sleep", Severity: 5, Date: "2024-1-7", CreatedAt: "2024-01-07T08:00:00.000Z"},
		{ID: "garbage", Name: "Sleep", Severity: 1, Date: "someday", CreatedAt: "2024-01-08T08:00:00.000Z"},
	}
	if err := database.Create(&legacy).Error; err != nil {
		testContext.Fatalf("failed to insert symptoms: %v", err)
	}
	medication := records.Medication{ID: "med", Name: "Lyrica", Dosage: "50mg", Date: "2023-9-30", CreatedAt: "2023-09-30T08:00:00.000Z"}
	if err := database.Create(&medication).Error; err != nil {
		testContext.Fatalf("failed to insert medication: %v", err)
	}

	if err := applyMigrations(database, zap.NewNop()); err != nil {
		testContext.Fatalf("failed to apply migrations: %v", err)
	}

	expectations := map[string]string{
		"padded":  "2024-01-05",
		"loose":   "2024-01-07",
		"garbage": "someday",
	}
	for id, wantDate := range expectations {
		var stored records.Symptom
		if err := database.Where("id = ?", id).Take(&stored).Error; err != nil {
			testContext.Fatalf("failed to reload symptom %s: %v", id, err)
		}
		if stored.Date != wantDate {
			testContext.Fatalf("symptom %s: expected date %s, got %s", id, wantDate, stored.Date)
		}
	}

	var storedMedication records.Medication
	if err := database.Where("id = ?", "med").Take(&storedMedication).Error; err != nil {
		testContext.Fatalf("failed to reload medication: %v", err)
	}
	if storedMedication.Date != "2023-09-30" {
		testContext.Fatalf("expected padded medication date, got %s", storedMedication.Date)
	}

	var record migrationRecord
	if err := database.Where("name = ?", migrationNormalizeRecordDates).Take(&record).Error; err != nil {
		testContext.Fatalf("expected migration record to be created: %v", err)
	}
	if record.AppliedAtSeconds == 0 {
		testContext.Fatalf("expected migration timestamp to be set")
	}
}

func TestOpenSQLiteIsIdempotent(testContext *testing.T) {
	databasePath := filepath.Join(testContext.TempDir(), "healthlog.db")

	for attempt := 0; attempt < 2; attempt++ {
		database, err := OpenSQLite(databasePath, zap.NewNop())
		if err != nil {
			testContext.Fatalf("attempt %d: failed to open database: %v", attempt, err)
		}
		var count int64
		if err := database.Model(&migrationRecord{}).Count(&count).Error; err != nil {
			testContext.Fatalf("attempt %d: failed to count migrations: %v", attempt, err)
		}
		if count != 1 {
			testContext.Fatalf("attempt %d: expected one migration record, got %d", attempt, count)
		}
		sqlDB, err := database.DB()
		if err != nil {
			testContext.Fatalf("attempt %d: failed to access sql db: %v", attempt, err)
		}
		if err := sqlDB.Close(); err != nil {
			testContext.Fatalf("attempt %d: failed to close database: %v", attempt, err)
		}
	}

	if _, err := OpenSQLite("", nil); err == nil {
		testContext.Fatalf("expected error for empty path")
	}
}
