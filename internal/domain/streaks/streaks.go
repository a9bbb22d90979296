// Package streaks computes current and best completion streaks for habits
// that run on a weekly schedule. It is the single engine shared by the API
// handlers and the milestone tracker.
package streaks

import "time"

const (
	// StreakGoal is the streak length that completes a habit's goal.
	StreakGoal = 30
	// MaxLookbackDays bounds the backward walk of CurrentStreak.
	MaxLookbackDays = 365
)

// Log is one day's completion state for a habit.
type Log struct {
	HabitID   string `json:"habitId"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

// Stats summarises a habit's progress. It is derived and never stored.
type Stats struct {
	TotalCompletions   int  `json:"totalCompletions"`
	CurrentStreak      int  `json:"currentStreak"`
	BestStreak         int  `json:"bestStreak"`
	StreakGoal         int  `json:"streakGoal"`
	StreakGoalComplete bool `json:"streakGoalComplete"`
}

// Engine evaluates streaks relative to the day reported by its clock.
type Engine struct {
	clock Clock
}

// NewEngine creates an engine. A nil clock uses the UTC system clock.
func NewEngine(clock Clock) *Engine {
	if clock == nil {
		clock = NewSystemClock(time.UTC)
	}
	return &Engine{clock: clock}
}

// Today returns the engine's current day.
func (e *Engine) Today() time.Time {
	return e.clock.Today()
}

// IsActiveDay reports whether date falls on one of the scheduled weekdays
// (0 = Sunday .. 6 = Saturday). An empty schedule means every day.
func IsActiveDay(date time.Time, activeDays []int) bool {
	if len(activeDays) == 0 {
		return true
	}
	weekday := int(date.Weekday())
	for _, d := range activeDays {
		if d == weekday {
			return true
		}
	}
	return false
}

// completedDates collapses the log set for habitID into the set of completed
// days. A later record for the same date replaces an earlier one, and
// records with malformed dates are ignored.
func completedDates(habitID string, logs []Log) map[string]bool {
	state := make(map[string]bool)
	for _, l := range logs {
		if l.HabitID != habitID {
			continue
		}
		day, err := ParseDate(l.Date)
		if err != nil {
			continue
		}
		state[FormatDate(day)] = l.Completed
	}

	completed := make(map[string]bool, len(state))
	for date, done := range state {
		if done {
			completed[date] = true
		}
	}
	return completed
}

// CurrentStreak counts consecutive completed active days walking back from
// today. Inactive days neither extend nor break the run. Today being active
// but not yet completed does not break the streak; any earlier missed
// active day does.
func (e *Engine) CurrentStreak(habitID string, activeDays []int, logs []Log) int {
	completed := completedDates(habitID, logs)
	return currentStreak(e.clock.Today(), activeDays, completed)
}

func currentStreak(today time.Time, activeDays []int, completed map[string]bool) int {
	if len(completed) == 0 {
		return 0
	}

	streak := 0
	d := today
	if IsActiveDay(d, activeDays) && completed[FormatDate(d)] {
		streak++
	}

	for i := 0; i < MaxLookbackDays; i++ {
		d = d.AddDate(0, 0, -1)
		if !IsActiveDay(d, activeDays) {
			continue
		}
		if !completed[FormatDate(d)] {
			break
		}
		streak++
	}

	return streak
}

// BestStreak returns the longest run of completed active days between the
// earliest completion and today.
func (e *Engine) BestStreak(habitID string, activeDays []int, logs []Log) int {
	completed := completedDates(habitID, logs)
	return bestStreak(e.clock.Today(), activeDays, completed)
}

func bestStreak(today time.Time, activeDays []int, completed map[string]bool) int {
	if len(completed) == 0 {
		return 0
	}

	var earliest time.Time
	for date := range completed {
		day, _ := ParseDate(date)
		if earliest.IsZero() || day.Before(earliest) {
			earliest = day
		}
	}

	best, current := 0, 0
	for d := earliest; !d.After(today); d = d.AddDate(0, 0, 1) {
		if !IsActiveDay(d, activeDays) {
			continue
		}
		if completed[FormatDate(d)] {
			current++
			if current > best {
				best = current
			}
		} else {
			current = 0
		}
	}

	return best
}

// TotalCompletions counts the distinct days on which habitID was completed.
func (e *Engine) TotalCompletions(habitID string, logs []Log) int {
	return len(completedDates(habitID, logs))
}

// Stats computes the full progress summary for a habit.
func (e *Engine) Stats(habitID string, activeDays []int, logs []Log) Stats {
	completed := completedDates(habitID, logs)
	today := e.clock.Today()

	current := currentStreak(today, activeDays, completed)
	best := bestStreak(today, activeDays, completed)
	if current > best {
		best = current
	}

	return Stats{
		TotalCompletions:   len(completed),
		CurrentStreak:      current,
		BestStreak:         best,
		StreakGoal:         StreakGoal,
		StreakGoalComplete: current >= StreakGoal,
	}
}
