package settings

import (
	"context"
	"errors"

	"github.com/RangerDjanger/BetterDay/internal/infrastructure/persistence/postgres/connection"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSettingsNotFound = errors.New("settings not found")
	ErrInvalidInput     = errors.New("invalid input")
)

// Repository defines the interface for settings persistence operations
type Repository interface {
	Find(ctx context.Context, userID string) (*Settings, error)
	Upsert(ctx context.Context, s *Settings) error
	Delete(ctx context.Context, userID string) error
	FindRemindersEnabled(ctx context.Context) ([]Settings, error)
}

type repository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &repository{db: db}
}

func (r *repository) Find(ctx context.Context, userID string) (*Settings, error) {
	var s Settings
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&s)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSettingsNotFound
		}
		return nil, result.Error
	}
	return &s, nil
}

func (r *repository) Upsert(ctx context.Context, s *Settings) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(s).Error
}

func (r *repository) Delete(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&Settings{}).Error
}

func (r *repository) FindRemindersEnabled(ctx context.Context) ([]Settings, error) {
	var list []Settings
	err := r.db.WithContext(ctx).Where("reminders_enabled = ?", true).Find(&list).Error
	return list, err
}
