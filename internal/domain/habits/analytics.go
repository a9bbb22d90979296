package habits

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// HabitAnalytics represents an analytics record for habit-related activities
type HabitAnalytics struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	HabitID   string         `gorm:"size:128;not null;index"`
	UserID    string         `gorm:"size:128;not null;index"`
	Action    string         `gorm:"type:varchar(50);not null"`
	Timestamp time.Time      `gorm:"not null;default:now()"`
	Metadata  datatypes.JSON `gorm:"type:jsonb"`
}

// TableName specifies the table name for the HabitAnalytics model
func (HabitAnalytics) TableName() string {
	return "habit_analytics"
}

// ActivitySummary counts a user's recorded actions over a window.
type ActivitySummary struct {
	ActionCounts map[string]int `json:"actionCounts"`
	StartTime    time.Time      `json:"startTime"`
	EndTime      time.Time      `json:"endTime"`
	TotalActions int            `json:"totalActions"`
}

// Common analytics actions
const (
	ActionHabitCreated     = "habit_created"
	ActionHabitUpdated     = "habit_updated"
	ActionHabitDeleted     = "habit_deleted"
	ActionHabitArchived    = "habit_archived"
	ActionHabitUnarchived  = "habit_unarchived"
	ActionHabitCompleted   = "habit_completed"
	ActionHabitUncompleted = "habit_uncompleted"
	ActionStreakMilestone  = "streak_milestone"
)

func newActivity(userID, habitID, action string, metadata map[string]interface{}) *HabitAnalytics {
	raw := datatypes.JSON("{}")
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			raw = datatypes.JSON(b)
		}
	}
	return &HabitAnalytics{
		ID:        uuid.New(),
		HabitID:   habitID,
		UserID:    userID,
		Action:    action,
		Timestamp: time.Now().UTC(),
		Metadata:  raw,
	}
}
