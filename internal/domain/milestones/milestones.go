// Package milestones tracks one-shot streak achievements per habit.
//
// A threshold is reported at most once per (user, habit). Persistence goes
// through a Store whose MarkAchieved is an atomic conditional insert, so two
// concurrent log writes can never both report the same label.
package milestones

import (
	"context"
	"fmt"

	"github.com/RangerDjanger/BetterDay/internal/domain/streaks"
)

// Threshold is a streak length that unlocks a milestone label.
type Threshold struct {
	Days  int
	Label string
}

// Thresholds are ordered ascending by Days.
var Thresholds = []Threshold{
	{Days: 7, Label: "1 Week Strong! 💪"},
	{Days: 14, Label: "2 Weeks — Habit Forming! 🌱"},
	{Days: 21, Label: "3 Weeks — It's a Habit Now! 🧠"},
	{Days: 30, Label: "Date Night Unlocked! 🎉"},
}

// Milestone is a threshold together with its achievement state.
type Milestone struct {
	Days     int    `json:"days"`
	Label    string `json:"label"`
	Achieved bool   `json:"achieved"`
}

// Key identifies the achievement record of a single habit.
type Key struct {
	UserID  string
	HabitID string
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.UserID, k.HabitID)
}

// Store persists achieved thresholds.
type Store interface {
	// Achieved returns the threshold days already recorded for key.
	Achieved(ctx context.Context, key Key) ([]int, error)
	// MarkAchieved records days for key and reports whether this call was
	// the one that inserted it.
	MarkAchieved(ctx context.Context, key Key, days int) (bool, error)
	// Clear forgets every threshold recorded for key.
	Clear(ctx context.Context, key Key) error
	// ClearUser forgets every threshold recorded for any habit of userID.
	ClearUser(ctx context.Context, userID string) error
}

// Tracker evaluates milestones against the streak engine.
type Tracker struct {
	engine *streaks.Engine
	store  Store
}

func NewTracker(engine *streaks.Engine, store Store) *Tracker {
	if engine == nil {
		engine = streaks.NewEngine(nil)
	}
	return &Tracker{engine: engine, store: store}
}

// Reset drops the achievements of one habit so a habit recreated under the
// same id starts over.
func (t *Tracker) Reset(ctx context.Context, key Key) error {
	if err := t.store.Clear(ctx, key); err != nil {
		return fmt.Errorf("clear milestones for %s: %w", key, err)
	}
	return nil
}

// ResetUser drops the achievements of every habit owned by userID.
func (t *Tracker) ResetUser(ctx context.Context, userID string) error {
	if err := t.store.ClearUser(ctx, userID); err != nil {
		return fmt.Errorf("clear milestones for user %s: %w", userID, err)
	}
	return nil
}

func achievedSet(days []int) map[int]bool {
	set := make(map[int]bool, len(days))
	for _, d := range days {
		set[d] = true
	}
	return set
}

// MilestonesForHabit lists every threshold. A threshold is achieved when it
// was recorded earlier or when the current streak meets it.
func (t *Tracker) MilestonesForHabit(ctx context.Context, key Key, activeDays []int, logs []streaks.Log) ([]Milestone, error) {
	stored, err := t.store.Achieved(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load milestones for %s: %w", key, err)
	}
	achieved := achievedSet(stored)
	current := t.engine.CurrentStreak(key.HabitID, activeDays, logs)

	result := make([]Milestone, 0, len(Thresholds))
	for _, th := range Thresholds {
		result = append(result, Milestone{
			Days:     th.Days,
			Label:    th.Label,
			Achieved: achieved[th.Days] || current >= th.Days,
		})
	}
	return result, nil
}

// CheckNewMilestone records and returns the lowest threshold that the
// current streak meets and that was not achieved before. It returns false
// when nothing new was unlocked. When a concurrent caller records the same
// threshold first, the next candidate is tried.
func (t *Tracker) CheckNewMilestone(ctx context.Context, key Key, activeDays []int, logs []streaks.Log) (Threshold, bool, error) {
	current := t.engine.CurrentStreak(key.HabitID, activeDays, logs)
	if current < Thresholds[0].Days {
		return Threshold{}, false, nil
	}

	stored, err := t.store.Achieved(ctx, key)
	if err != nil {
		return Threshold{}, false, fmt.Errorf("load milestones for %s: %w", key, err)
	}
	achieved := achievedSet(stored)

	for _, th := range Thresholds {
		if current < th.Days || achieved[th.Days] {
			continue
		}
		added, err := t.store.MarkAchieved(ctx, key, th.Days)
		if err != nil {
			return Threshold{}, false, fmt.Errorf("record milestone %d for %s: %w", th.Days, key, err)
		}
		if added {
			return th, true, nil
		}
	}
	return Threshold{}, false, nil
}
