package database

import (
	"fmt"
	"time"
)

// TimestampLayout is how every timestamp column is stored: UTC, second
// precision, so lexicographic order matches chronological order.
const TimestampLayout = "2006-01-02T15:04:05Z"

// FormatTimestamp encodes t for storage.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp decodes a stored timestamp. Date-only values are accepted
// for hand-written fixtures.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// Window is a half-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Days returns the number of whole days the window spans.
func (w Window) Days() int {
	return int(w.End.Sub(w.Start).Hours() / 24)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateWindow covers the calendar days from through to, both inclusive.
func DateWindow(from, to time.Time) Window {
	return Window{Start: startOfDay(from), End: startOfDay(to).AddDate(0, 0, 1)}
}

// TrailingWindow covers the last n calendar days ending with the day of now.
// n=1 is "today"; n=30 on 2025-07-15 starts at 2025-06-16.
func TrailingWindow(now time.Time, days int) Window {
	if days < 1 {
		days = 1
	}
	end := startOfDay(now).AddDate(0, 0, 1)
	return Window{Start: end.AddDate(0, 0, -days), End: end}
}

// FormatWindowDisplay formats a window for human-readable display.
// Single day: "Feb 06, 2026"
// Range: "Feb 01 - Feb 06, 2026"
func FormatWindowDisplay(w Window) string {
	last := w.End.AddDate(0, 0, -1)
	if !last.After(w.Start) {
		return w.Start.Format("Jan 02, 2006")
	}
	return fmt.Sprintf("%s - %s", w.Start.Format("Jan 02"), last.Format("Jan 02, 2006"))
}
