package journal

import (
	"time"
)

// Reflection is the free-text evening review for one day.
type Reflection struct {
	UserID    string    `gorm:"primaryKey;size:128" json:"-"`
	Date      string    `gorm:"primaryKey;size:10" json:"date"`
	WentWell  string    `gorm:"type:text;not null;default:''" json:"wentWell"`
	ToImprove string    `gorm:"type:text;not null;default:''" json:"toImprove"`
	UpdatedAt time.Time `gorm:"not null;default:current_timestamp" json:"-"`
}

// TableName specifies the table name for the Reflection model
func (Reflection) TableName() string {
	return "reflections"
}

// MoodEntry holds the morning and evening mood scores for one day. A score
// of 0 means the slot was not recorded.
type MoodEntry struct {
	UserID    string    `gorm:"primaryKey;size:128" json:"-"`
	Date      string    `gorm:"primaryKey;size:10" json:"date"`
	Morning   int       `gorm:"not null;default:0" json:"morning,omitempty"`
	Evening   int       `gorm:"not null;default:0" json:"evening,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:current_timestamp" json:"-"`
}

// TableName specifies the table name for the MoodEntry model
func (MoodEntry) TableName() string {
	return "mood_entries"
}

const (
	MinMood = 1
	MaxMood = 5
)

// ReflectionInput represents the input for saving a reflection
type ReflectionInput struct {
	Date      string `json:"date"`
	WentWell  string `json:"wentWell"`
	ToImprove string `json:"toImprove"`
}

// MoodInput represents the input for saving a mood entry
type MoodInput struct {
	Date    string `json:"date"`
	Morning int    `json:"morning"`
	Evening int    `json:"evening"`
}
