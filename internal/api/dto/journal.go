package dto

import (
	"github.com/RangerDjanger/BetterDay/internal/domain/coach"
	"github.com/RangerDjanger/BetterDay/internal/domain/journal"
)

// ReflectionRequest is the body of a reflection save.
type ReflectionRequest struct {
	Date      string `json:"date" validate:"required,ymd"`
	WentWell  string `json:"wentWell"`
	ToImprove string `json:"toImprove"`
}

// MoodRequest is the body of a mood save. 0 leaves a slot unrecorded.
type MoodRequest struct {
	Date    string `json:"date" validate:"required,ymd"`
	Morning int    `json:"morning" validate:"omitempty,min=1,max=5"`
	Evening int    `json:"evening" validate:"omitempty,min=1,max=5"`
}

// CheckInRequest is the evening check-in: mood, reflection and an optional
// coach voice for this request only.
type CheckInRequest struct {
	Date        string `json:"date" validate:"required,ymd"`
	Morning     int    `json:"morning" validate:"omitempty,min=1,max=5"`
	Evening     int    `json:"evening" validate:"omitempty,min=1,max=5"`
	WentWell    string `json:"wentWell"`
	ToImprove   string `json:"toImprove"`
	Personality string `json:"personality"`
}

// CheckInResponse echoes the saved records. Exactly one of Message and
// CoachError is set.
type CheckInResponse struct {
	Mood        *journal.MoodEntry  `json:"mood"`
	Reflection  *journal.Reflection `json:"reflection"`
	Summary     coach.DaySummary    `json:"summary"`
	Personality string              `json:"personality"`
	Message     string              `json:"message,omitempty"`
	CoachError  string              `json:"coach_error,omitempty"`
}
