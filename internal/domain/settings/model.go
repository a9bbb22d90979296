package settings

import (
	"time"

	"github.com/RangerDjanger/BetterDay/internal/domain/coach"
)

const (
	DefaultMorningTime = "07:00"
	DefaultEveningTime = "21:00"
)

// Settings are the per-user preferences. A user without a stored row gets
// Defaults.
type Settings struct {
	UserID           string    `gorm:"primaryKey;size:128" json:"-"`
	CoachPersonality string    `gorm:"size:32;not null;default:'motivator'" json:"coachPersonality"`
	RemindersEnabled bool      `gorm:"not null;default:false" json:"remindersEnabled"`
	MorningTime      string    `gorm:"size:5;not null;default:'07:00'" json:"morningTime"`
	EveningTime      string    `gorm:"size:5;not null;default:'21:00'" json:"eveningTime"`
	Email            string    `gorm:"size:255" json:"email,omitempty"`
	UpdatedAt        time.Time `gorm:"not null;default:current_timestamp" json:"-"`
}

// TableName specifies the table name for the Settings model
func (Settings) TableName() string {
	return "user_settings"
}

// Defaults returns the settings used for a user who never saved any.
func Defaults(userID string) Settings {
	return Settings{
		UserID:           userID,
		CoachPersonality: string(coach.DefaultPersonality),
		RemindersEnabled: false,
		MorningTime:      DefaultMorningTime,
		EveningTime:      DefaultEveningTime,
	}
}

// Input represents the body of a settings update. Empty strings select the
// defaults.
type Input struct {
	CoachPersonality string `json:"coachPersonality"`
	RemindersEnabled bool   `json:"remindersEnabled"`
	MorningTime      string `json:"morningTime"`
	EveningTime      string `json:"eveningTime"`
	Email            string `json:"email"`
}
