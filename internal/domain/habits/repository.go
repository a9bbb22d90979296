package habits

import (
	"context"
	"errors"
	"time"

	"github.com/RangerDjanger/BetterDay/internal/domain/milestones"
	"github.com/RangerDjanger/BetterDay/internal/infrastructure/persistence/postgres/connection"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
	ErrLogNotFound   = errors.New("habit log not found")
	ErrInvalidInput  = errors.New("invalid input")
)

// Repository defines the interface for habit persistence operations
type Repository interface {
	Upsert(ctx context.Context, habit *Habit) error
	Find(ctx context.Context, userID, id string) (*Habit, error)
	List(ctx context.Context, userID string) ([]Habit, error)
	Delete(ctx context.Context, userID, id string) error
	SetArchived(ctx context.Context, userID, id string, archived bool) error

	UpsertLog(ctx context.Context, log *HabitLog) error
	FindLog(ctx context.Context, userID, habitID, date string) (*HabitLog, error)
	DeleteLog(ctx context.Context, userID, habitID, date string) error
	ListLogs(ctx context.Context, userID, habitID string) ([]HabitLog, error)
	ListLogsByDate(ctx context.Context, userID, date string) ([]HabitLog, error)

	// Heatmap: completed logs per date, inclusive bounds.
	GetHeatmapData(ctx context.Context, userID, startDate, endDate string) (map[string]int, error)

	RecordHabitActivity(ctx context.Context, analytics *HabitAnalytics) error
	GetUserActivitySummary(ctx context.Context, userID string, startTime, endTime time.Time) (map[string]int, error)

	DeleteByUser(ctx context.Context, userID string) error
}

type repository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &repository{db: db}
}

func (r *repository) Upsert(ctx context.Context, habit *Habit) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "description", "category", "created_at",
			"reminder_time", "active_days", "archived", "updated_at",
		}),
	}).Create(habit).Error
}

func (r *repository) Find(ctx context.Context, userID, id string) (*Habit, error) {
	var habit Habit
	result := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&habit)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, result.Error
	}
	return &habit, nil
}

func (r *repository) List(ctx context.Context, userID string) ([]Habit, error) {
	var habits []Habit
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&habits).Error
	return habits, err
}

// Delete removes the habit with its logs and milestones. Deleting an absent
// habit is not an error.
func (r *repository) Delete(ctx context.Context, userID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND habit_id = ?", userID, id).Delete(&HabitLog{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? AND habit_id = ?", userID, id).Delete(&HabitMilestone{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND id = ?", userID, id).Delete(&Habit{}).Error
	})
}

func (r *repository) SetArchived(ctx context.Context, userID, id string, archived bool) error {
	result := r.db.WithContext(ctx).Model(&Habit{}).
		Where("user_id = ? AND id = ?", userID, id).
		Update("archived", archived)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrHabitNotFound
	}
	return nil
}

func (r *repository) UpsertLog(ctx context.Context, log *HabitLog) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "habit_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "updated_at"}),
	}).Create(log).Error
}

func (r *repository) FindLog(ctx context.Context, userID, habitID, date string) (*HabitLog, error) {
	var log HabitLog
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND habit_id = ? AND date = ?", userID, habitID, date).
		First(&log)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrLogNotFound
		}
		return nil, result.Error
	}
	return &log, nil
}

func (r *repository) DeleteLog(ctx context.Context, userID, habitID, date string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND habit_id = ? AND date = ?", userID, habitID, date).
		Delete(&HabitLog{}).Error
}

func (r *repository) ListLogs(ctx context.Context, userID, habitID string) ([]HabitLog, error) {
	var logs []HabitLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND habit_id = ?", userID, habitID).
		Order("date ASC").
		Find(&logs).Error
	return logs, err
}

func (r *repository) ListLogsByDate(ctx context.Context, userID, date string) ([]HabitLog, error) {
	var logs []HabitLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Find(&logs).Error
	return logs, err
}

func (r *repository) GetHeatmapData(ctx context.Context, userID, startDate, endDate string) (map[string]int, error) {
	var results []struct {
		Date           string
		CompletedCount int
	}

	err := r.db.WithContext(ctx).Model(&HabitLog{}).
		Select("date, COUNT(*) AS completed_count").
		Where("user_id = ? AND completed = ? AND date BETWEEN ? AND ?", userID, true, startDate, endDate).
		Group("date").
		Order("date").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	heatmapData := make(map[string]int, len(results))
	for _, result := range results {
		heatmapData[result.Date] = result.CompletedCount
	}
	return heatmapData, nil
}

func (r *repository) RecordHabitActivity(ctx context.Context, analytics *HabitAnalytics) error {
	return r.db.WithContext(ctx).Create(analytics).Error
}

func (r *repository) GetUserActivitySummary(ctx context.Context, userID string, startTime, endTime time.Time) (map[string]int, error) {
	var results []struct {
		Action string
		Count  int
	}

	err := r.db.WithContext(ctx).Model(&HabitAnalytics{}).
		Select("action, count(*) as count").
		Where("user_id = ? AND timestamp BETWEEN ? AND ?", userID, startTime, endTime).
		Group("action").
		Find(&results).Error
	if err != nil {
		return nil, err
	}

	summary := make(map[string]int, len(results))
	for _, result := range results {
		summary[result.Action] = result.Count
	}
	return summary, nil
}

func (r *repository) DeleteByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&HabitLog{}, &HabitMilestone{}, &HabitAnalytics{}, &Habit{}} {
			if err := tx.Where("user_id = ?", userID).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// milestoneStore persists achieved thresholds in habit_milestones. The
// primary key turns MarkAchieved into an atomic conditional insert.
type milestoneStore struct {
	db *connection.Database
}

// NewMilestoneStore returns a milestones.Store backed by Postgres.
func NewMilestoneStore(db *connection.Database) milestones.Store {
	return &milestoneStore{db: db}
}

func (s *milestoneStore) Achieved(ctx context.Context, key milestones.Key) ([]int, error) {
	var days []int
	err := s.db.WithContext(ctx).Model(&HabitMilestone{}).
		Where("user_id = ? AND habit_id = ?", key.UserID, key.HabitID).
		Order("days").
		Pluck("days", &days).Error
	return days, err
}

func (s *milestoneStore) MarkAchieved(ctx context.Context, key milestones.Key, days int) (bool, error) {
	row := HabitMilestone{
		UserID:     key.UserID,
		HabitID:    key.HabitID,
		Days:       days,
		AchievedAt: time.Now().UTC(),
	}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if result.Error != nil {
		if connection.IsUniqueViolation(result.Error) {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (s *milestoneStore) Clear(ctx context.Context, key milestones.Key) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND habit_id = ?", key.UserID, key.HabitID).
		Delete(&HabitMilestone{}).Error
}

func (s *milestoneStore) ClearUser(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&HabitMilestone{}).Error
}
