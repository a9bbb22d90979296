package dto

import (
	"time"

	"github.com/RangerDjanger/BetterDay/internal/domain/milestones"
)

// HabitRequest is the body of habit create and update requests. The client
// may supply its own id and creation time.
type HabitRequest struct {
	ID           string     `json:"id" validate:"omitempty,max=128"`
	Name         string     `json:"name" validate:"required,not_empty,max=255"`
	Description  string     `json:"description"`
	Category     string     `json:"category" validate:"max=128"`
	CreatedAt    *time.Time `json:"createdAt"`
	ReminderTime string     `json:"reminderTime" validate:"omitempty,hhmm"`
	ActiveDays   []int      `json:"activeDays" validate:"dive,min=0,max=6"`
	Archived     bool       `json:"archived"`
}

// ArchiveRequest sets or clears the archived flag.
type ArchiveRequest struct {
	Archived bool `json:"archived"`
}

// HabitResponse represents a habit in API responses. ActiveDays is always
// an array; empty means every day.
type HabitResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Category     string    `json:"category,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	ReminderTime string    `json:"reminderTime,omitempty"`
	ActiveDays   []int     `json:"activeDays"`
	Archived     bool      `json:"archived"`
}

// HabitListResponse represents the response for listing habits
type HabitListResponse struct {
	Habits     []HabitResponse `json:"habits"`
	TotalCount int             `json:"totalCount"`
}

// LogRequest records completion of a habit on a date.
type LogRequest struct {
	Date      string `json:"date" validate:"required,ymd"`
	Completed bool   `json:"completed"`
}

// ToggleRequest flips completion on a date.
type ToggleRequest struct {
	Date string `json:"date" validate:"required,ymd"`
}

type HabitLogResponse struct {
	HabitID   string `json:"habitId"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

// LogWriteResponse is returned by log writes. Milestone holds the label of
// a milestone reached by this write, once.
type LogWriteResponse struct {
	Log       *HabitLogResponse `json:"log,omitempty"`
	Removed   bool              `json:"removed"`
	Milestone string            `json:"milestone,omitempty"`
}

// HabitStatsResponse carries the streak statistics of one habit.
type HabitStatsResponse struct {
	HabitID            string `json:"habitId"`
	TotalCompletions   int    `json:"totalCompletions"`
	CurrentStreak      int    `json:"currentStreak"`
	BestStreak         int    `json:"bestStreak"`
	StreakGoal         int    `json:"streakGoal"`
	StreakGoalComplete bool   `json:"streakGoalComplete"`
}

type MilestonesResponse struct {
	HabitID    string                 `json:"habitId"`
	Milestones []milestones.Milestone `json:"milestones"`
}

// HeatmapQuery selects the heatmap window.
type HeatmapQuery struct {
	Period string `form:"period" validate:"omitempty,oneof=week month year"`
}

// HeatmapResponse represents habit completion heatmap data
type HeatmapResponse struct {
	Data     map[string]int `json:"data"`
	Period   string         `json:"period"`
	MinValue int            `json:"minValue"`
	MaxValue int            `json:"maxValue"`
}

// ActivityQuery bounds the activity summary to the last Days days.
type ActivityQuery struct {
	Days int `form:"days" validate:"omitempty,min=1,max=366"`
}
