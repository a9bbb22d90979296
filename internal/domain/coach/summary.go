package coach

import (
	"fmt"
	"strings"
)

// HabitDay is one scheduled habit and whether it was done on the day.
type HabitDay struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// DayInput is the raw material of a day summary.
type DayInput struct {
	Habits    []HabitDay
	Morning   int
	Evening   int
	WentWell  string
	ToImprove string
}

// DaySummary is what the coach is told about the day. Mood scores of 0 mean
// the slot was not recorded.
type DaySummary struct {
	CompletedHabits []string `json:"completedHabits"`
	MissedHabits    []string `json:"missedHabits"`
	TotalHabits     int      `json:"totalHabits"`
	Morning         int      `json:"morning,omitempty"`
	Evening         int      `json:"evening,omitempty"`
	WentWell        string   `json:"wentWell"`
	ToImprove       string   `json:"toImprove"`
}

// BuildSummary splits the day's habits into completed and missed while
// keeping their order.
func BuildSummary(in DayInput) DaySummary {
	summary := DaySummary{
		CompletedHabits: []string{},
		MissedHabits:    []string{},
		TotalHabits:     len(in.Habits),
		WentWell:        in.WentWell,
		ToImprove:       in.ToImprove,
	}
	for _, h := range in.Habits {
		if h.Completed {
			summary.CompletedHabits = append(summary.CompletedHabits, h.Name)
		} else {
			summary.MissedHabits = append(summary.MissedHabits, h.Name)
		}
	}
	if in.Morning > 0 {
		summary.Morning = in.Morning
	}
	if in.Evening > 0 {
		summary.Evening = in.Evening
	}
	return summary
}

// UserMessage renders the summary as the user turn of the conversation.
func UserMessage(s DaySummary) string {
	parts := []string{
		fmt.Sprintf("Today I completed %d out of %d habits.", len(s.CompletedHabits), s.TotalHabits),
	}

	if len(s.CompletedHabits) > 0 {
		parts = append(parts, fmt.Sprintf("Completed: %s.", strings.Join(s.CompletedHabits, ", ")))
	}
	if len(s.MissedHabits) > 0 {
		parts = append(parts, fmt.Sprintf("Missed: %s.", strings.Join(s.MissedHabits, ", ")))
	}

	if s.Morning > 0 {
		parts = append(parts, fmt.Sprintf("Morning mood: %d/5.", s.Morning))
	}
	if s.Evening > 0 {
		parts = append(parts, fmt.Sprintf("Evening mood: %d/5.", s.Evening))
	}

	if s.WentWell != "" {
		parts = append(parts, "What went well: "+s.WentWell)
	}
	if s.ToImprove != "" {
		parts = append(parts, "What could improve: "+s.ToImprove)
	}

	return strings.Join(parts, " ")
}
