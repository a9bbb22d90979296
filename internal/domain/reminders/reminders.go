package reminders

import (
	"fmt"
	"strings"
	"time"

	"github.com/RangerDjanger/BetterDay/internal/domain/streaks"
)

// Reminder is a notification due at a wall-clock minute. Empty Days means
// every day; otherwise 0=Sunday..6=Saturday.
type Reminder struct {
	ID    string `json:"id"`
	Time  string `json:"time"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Days  []int  `json:"days,omitempty"`
}

// Preferences are the user's reminder times in HH:MM.
type Preferences struct {
	MorningTime string
	EveningTime string
}

// Habit is the view of a habit needed to build reminders.
type Habit struct {
	ID           string
	Name         string
	Description  string
	ReminderTime string
	ActiveDays   []int
	Archived     bool
}

const (
	MorningID = "morning"
	EveningID = "evening"

	morningTitle     = "🌅 Good morning!"
	morningEmptyBody = "No habits scheduled today — enjoy your day!"
	eveningTitle     = "🌙 Evening check-in"
	eveningBody      = "How did today go? Open BetterDay to log your habits and reflect."
	habitBody        = "Time to complete this habit!"
)

// BuildReminders returns the morning summary, the evening check-in and one
// reminder per habit scheduled today that carries a reminder time.
func BuildReminders(prefs Preferences, habits []Habit, now time.Time) []Reminder {
	today := streaks.Day(now)

	var todays []Habit
	for _, h := range habits {
		if !h.Archived && streaks.IsActiveDay(today, h.ActiveDays) {
			todays = append(todays, h)
		}
	}

	morning := Reminder{ID: MorningID, Time: prefs.MorningTime, Title: morningTitle, Body: morningEmptyBody}
	if len(todays) > 0 {
		names := make([]string, len(todays))
		for i, h := range todays {
			names[i] = h.Name
		}
		morning.Body = fmt.Sprintf("You have %d habits today: %s", len(names), strings.Join(names, ", "))
	}

	out := []Reminder{
		morning,
		{ID: EveningID, Time: prefs.EveningTime, Title: eveningTitle, Body: eveningBody},
	}

	for _, h := range todays {
		if h.ReminderTime == "" {
			continue
		}
		body := h.Description
		if body == "" {
			body = habitBody
		}
		r := Reminder{
			ID:    "habit-" + h.ID,
			Time:  h.ReminderTime,
			Title: "⏰ " + h.Name,
			Body:  body,
		}
		if len(h.ActiveDays) > 0 {
			r.Days = append([]int(nil), h.ActiveDays...)
		}
		out = append(out, r)
	}
	return out
}

// Due reports whether r should fire at the wall-clock minute of now.
func (r Reminder) Due(now time.Time) bool {
	if r.Time != now.Format(streaks.ClockLayout) {
		return false
	}
	return streaks.IsActiveDay(streaks.Day(now), r.Days)
}

// firedKey identifies one firing of r so it is delivered once per minute.
func (r Reminder) firedKey(now time.Time) string {
	return r.ID + "-" + streaks.FormatDate(now) + "-" + now.Format(streaks.ClockLayout)
}
