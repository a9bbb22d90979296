package streaks

import "time"

// DateLayout is the calendar-day format used for every log date.
const DateLayout = "2006-01-02"

// Clock supplies the current local calendar day.
type Clock interface {
	Today() time.Time
}

// SystemClock reads the wall clock in a single configured location.
type SystemClock struct {
	Location *time.Location
}

// NewSystemClock returns a clock for loc, or UTC when loc is nil.
func NewSystemClock(loc *time.Location) SystemClock {
	if loc == nil {
		loc = time.UTC
	}
	return SystemClock{Location: loc}
}

func (c SystemClock) Today() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return Day(time.Now().In(loc))
}

// FixedClock always reports the same day.
type FixedClock struct {
	Date time.Time
}

func (c FixedClock) Today() time.Time {
	return Day(c.Date)
}

// Day strips the time of day and normalises t to a UTC midnight carrying the
// same calendar date, so AddDate walks civil days without DST drift.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a normalised day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

// FormatDate renders a day as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ValidDate reports whether s is a well-formed calendar day.
func ValidDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// ClockLayout is the 24-hour HH:MM form used for reminder times.
const ClockLayout = "15:04"

// ValidClock reports whether s is a zero-padded 24-hour HH:MM time.
func ValidClock(s string) bool {
	if len(s) != len(ClockLayout) {
		return false
	}
	_, err := time.Parse(ClockLayout, s)
	return err == nil
}
