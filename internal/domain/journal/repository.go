package journal

import (
	"context"
	"errors"

	"github.com/RangerDjanger/BetterDay/internal/infrastructure/persistence/postgres/connection"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrReflectionNotFound = errors.New("reflection not found")
	ErrMoodNotFound       = errors.New("mood entry not found")
	ErrInvalidInput       = errors.New("invalid input")
)

// Repository defines the interface for journal persistence operations
type Repository interface {
	UpsertReflection(ctx context.Context, r *Reflection) error
	FindReflection(ctx context.Context, userID, date string) (*Reflection, error)
	ListReflections(ctx context.Context, userID string) ([]Reflection, error)

	UpsertMood(ctx context.Context, m *MoodEntry) error
	FindMood(ctx context.Context, userID, date string) (*MoodEntry, error)
	ListMoods(ctx context.Context, userID string) ([]MoodEntry, error)

	DeleteByUser(ctx context.Context, userID string) error
}

type repository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &repository{db: db}
}

func (r *repository) UpsertReflection(ctx context.Context, refl *Reflection) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"went_well", "to_improve", "updated_at"}),
	}).Create(refl).Error
}

func (r *repository) FindReflection(ctx context.Context, userID, date string) (*Reflection, error) {
	var refl Reflection
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&refl)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrReflectionNotFound
		}
		return nil, result.Error
	}
	return &refl, nil
}

func (r *repository) ListReflections(ctx context.Context, userID string) ([]Reflection, error) {
	var list []Reflection
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Find(&list).Error
	return list, err
}

func (r *repository) UpsertMood(ctx context.Context, m *MoodEntry) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"morning", "evening", "updated_at"}),
	}).Create(m).Error
}

func (r *repository) FindMood(ctx context.Context, userID, date string) (*MoodEntry, error) {
	var m MoodEntry
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&m)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrMoodNotFound
		}
		return nil, result.Error
	}
	return &m, nil
}

func (r *repository) ListMoods(ctx context.Context, userID string) ([]MoodEntry, error) {
	var list []MoodEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Find(&list).Error
	return list, err
}

func (r *repository) DeleteByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&Reflection{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&MoodEntry{}).Error
	})
}
