package migrations

import (
	"errors"
	"fmt"
	"time"

	"github.com/RangerDjanger/BetterDay/internal/domain/habits"
	"github.com/RangerDjanger/BetterDay/internal/domain/journal"
	"github.com/RangerDjanger/BetterDay/internal/domain/settings"
	"github.com/RangerDjanger/BetterDay/internal/infrastructure/persistence/postgres/connection"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MigrationRecord tracks the migration history
type MigrationRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"not null;unique"`
	Version   int       `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for migration records
func (MigrationRecord) TableName() string {
	return "schema_migrations"
}

// Models lists every persisted model in migration order.
func Models() []interface{} {
	return []interface{}{
		&habits.Habit{},
		&habits.HabitLog{},
		&habits.HabitMilestone{},
		&habits.HabitAnalytics{},
		&journal.Reflection{},
		&journal.MoodEntry{},
		&settings.Settings{},
	}
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *connection.Database, logger *zap.Logger) error {
	logger.Info("Starting automatic database migration...")

	if err := db.AutoMigrate(&MigrationRecord{}); err != nil {
		logger.Error("Failed to create migrations table", zap.Error(err))
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		txDB := connection.Wrap(tx)

		var lastVersion int
		if err := txDB.Model(&MigrationRecord{}).Select("COALESCE(MAX(version), 0)").Scan(&lastVersion).Error; err != nil {
			return fmt.Errorf("failed to get last version: %w", err)
		}

		applied := 0
		for _, model := range Models() {
			modelName := fmt.Sprintf("%T", model)

			var record MigrationRecord
			err := txDB.Where("name = ?", modelName).First(&record).Error
			isNewMigration := errors.Is(err, gorm.ErrRecordNotFound)
			if err != nil && !isNewMigration {
				return fmt.Errorf("failed to read migration record for %s: %w", modelName, err)
			}

			if err := txDB.AutoMigrate(model); err != nil {
				logger.Error("Failed to migrate model",
					zap.String("model", modelName),
					zap.Error(err),
				)
				return fmt.Errorf("failed to migrate %s: %w", modelName, err)
			}

			if !isNewMigration {
				continue
			}
			applied++
			record = MigrationRecord{
				Name:      modelName,
				Version:   lastVersion + applied,
				AppliedAt: time.Now().UTC(),
			}
			if err := txDB.Create(&record).Error; err != nil {
				logger.Error("Failed to record migration",
					zap.String("model", modelName),
					zap.Error(err),
				)
				return fmt.Errorf("failed to record migration for %s: %w", modelName, err)
			}
			logger.Info("Applied new migration",
				zap.String("model", modelName),
				zap.Int("version", record.Version),
			)
		}

		logger.Info("Database migration completed successfully", zap.Int("applied", applied))
		return nil
	})
}

// GetMigrationHistory returns the history of applied migrations
func GetMigrationHistory(db *connection.Database) ([]MigrationRecord, error) {
	var records []MigrationRecord
	err := db.Order("version ASC").Find(&records).Error
	return records, err
}
