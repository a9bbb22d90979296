package habits

import (
	"time"

	"github.com/RangerDjanger/BetterDay/internal/domain/streaks"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Habit is owned by an opaque user id. IDs are client-supplied strings
// (seed habits use "seed-..."), so the primary key is (user_id, id).
type Habit struct {
	UserID       string        `gorm:"primaryKey;size:128" json:"-"`
	ID           string        `gorm:"primaryKey;size:128" json:"id"`
	Name         string        `gorm:"size:255;not null" json:"name"`
	Description  string        `gorm:"type:text" json:"description,omitempty"`
	Category     string        `gorm:"size:128" json:"category,omitempty"`
	CreatedAt    time.Time     `gorm:"not null" json:"createdAt"`
	ReminderTime string        `gorm:"size:5" json:"reminderTime,omitempty"`
	ActiveDays   pq.Int64Array `gorm:"type:integer[]" json:"activeDays"`
	Archived     bool          `gorm:"not null;default:false" json:"archived"`
	UpdatedAt    time.Time     `gorm:"not null;default:current_timestamp;autoUpdateTime" json:"-"`
}

// TableName specifies the table name for the Habit model
func (Habit) TableName() string {
	return "habits"
}

// BeforeCreate fills in the id and creation time when the client omits them.
func (h *Habit) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	return nil
}

// Days returns the active weekdays as plain ints; empty means every day.
func (h *Habit) Days() []int {
	days := make([]int, 0, len(h.ActiveDays))
	for _, d := range h.ActiveDays {
		days = append(days, int(d))
	}
	return days
}

// ActiveOn reports whether the habit is scheduled on the date.
func (h *Habit) ActiveOn(date time.Time) bool {
	return streaks.IsActiveDay(date, h.Days())
}

// HabitLog is the completion record for one (user, habit, date).
type HabitLog struct {
	UserID    string    `gorm:"primaryKey;size:128;index:idx_habit_logs_user_date,priority:1" json:"-"`
	HabitID   string    `gorm:"primaryKey;size:128" json:"habitId"`
	Date      string    `gorm:"primaryKey;size:10;index:idx_habit_logs_user_date,priority:2" json:"date"`
	Completed bool      `gorm:"not null;default:false" json:"completed"`
	UpdatedAt time.Time `gorm:"not null;default:current_timestamp;autoUpdateTime" json:"-"`
}

// TableName specifies the table name for the HabitLog model
func (HabitLog) TableName() string {
	return "habit_logs"
}

func (l HabitLog) streakLog() streaks.Log {
	return streaks.Log{HabitID: l.HabitID, Date: l.Date, Completed: l.Completed}
}

func toStreakLogs(logs []HabitLog) []streaks.Log {
	out := make([]streaks.Log, 0, len(logs))
	for _, l := range logs {
		out = append(out, l.streakLog())
	}
	return out
}

// HabitMilestone records a permanently achieved streak threshold.
type HabitMilestone struct {
	UserID     string    `gorm:"primaryKey;size:128"`
	HabitID    string    `gorm:"primaryKey;size:128"`
	Days       int       `gorm:"primaryKey"`
	AchievedAt time.Time `gorm:"not null;default:current_timestamp"`
}

// TableName specifies the table name for the HabitMilestone model
func (HabitMilestone) TableName() string {
	return "habit_milestones"
}

// HabitInput is the body of a create or update request.
type HabitInput struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	CreatedAt    *time.Time `json:"createdAt"`
	ReminderTime string     `json:"reminderTime"`
	ActiveDays   []int      `json:"activeDays"`
	Archived     bool       `json:"archived"`
}

// LogInput sets the completion state for a date.
type LogInput struct {
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

// LogResult is returned from log writes. Log is nil when a toggle removed
// the record. Milestone holds the label of a newly achieved milestone.
type LogResult struct {
	Log       *HabitLog `json:"log"`
	Removed   bool      `json:"removed"`
	Milestone string    `json:"milestone,omitempty"`
}
