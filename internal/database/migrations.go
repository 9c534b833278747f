package database

import (
	"errors"
	"time"

	"github.com/MarcoPoloResearchLab/healthlog/backend/internal/records"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrationNormalizeRecordDates = "2026-10-01_normalize_record_dates"

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
		{name: migrationNormalizeRecordDates, apply: normalizeRecordDates},
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
		if err := db.Transaction(migration.apply); err != nil {
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

type datedRow struct {
	ID   string `gorm:"column:id"`
	Date string `gorm:"column:date"`
}

// normalizeRecordDates zero-pads legacy day strings such as 2024-1-5. Timelines sort dates as
// strings, which is only calendar order for the padded form. Unparseable dates are left alone.
func normalizeRecordDates(tx *gorm.DB) error {
	tables := []string{
		records.Symptom{}.TableName(),
		records.Medication{}.TableName(),
		records.Note{}.TableName(),
	}
	for _, table := range tables {
		var rows []datedRow
		if err := tx.Table(table).Select("id", "date").Where("length(date) <> 10").Find(&rows).Error; err != nil {
			return err
		}
		for _, row := range rows {
			normalized, err := records.NormalizeDate(row.Date)
			if err != nil || normalized == row.Date {
				continue
			}
			if err := tx.Table(table).Where("id = ?", row.ID).Update("date", normalized).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
