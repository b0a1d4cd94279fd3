package schedule

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of every schedule date.
const DateLayout = "2006-01-02"

// Window is a Monday-to-Sunday calendar week. Both ends are inclusive.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether d falls on a day inside the window.
func (w Window) Contains(d time.Time) bool {
	d = truncateDay(d)
	return !d.Before(w.Start) && !d.After(w.End)
}

func (w Window) String() string {
	return w.Start.Format(DateLayout) + ".." + w.End.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string into a UTC-midnight time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// MondayOf returns the Monday on or before d. Weeks start on Monday
// regardless of locale.
func MondayOf(d time.Time) time.Time {
	d = truncateDay(d)
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return d.AddDate(0, 0, -offset)
}

// WindowOf returns the calendar week containing d.
func WindowOf(d time.Time) Window {
	start := MondayOf(d)
	return Window{Start: start, End: start.AddDate(0, 0, 6)}
}

func truncateDay(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
