package database

import (
	"testing"
	"time"
)

func TestDateWindowEndIsExclusiveNextDay(t *testing.T) {
	w := DateWindow(ts(t, "2025-06-01T15:30:00Z"), ts(t, "2025-06-10T00:00:00Z"))
	if !w.Start.Equal(ts(t, "2025-06-01T00:00:00Z")) {
		t.Errorf("expected start 2025-06-01T00:00, got %v", w.Start)
	}
	if !w.End.Equal(ts(t, "2025-06-11T00:00:00Z")) {
		t.Errorf("expected end 2025-06-11T00:00, got %v", w.End)
	}
	if !w.Contains(ts(t, "2025-06-10T23:59:59Z")) {
		t.Error("last second of to-date should be inside")
	}
	if w.Contains(w.End) {
		t.Error("end must be exclusive")
	}
}

func TestTrailingWindow(t *testing.T) {
	now := ts(t, "2025-07-15T18:45:00Z")
	tests := []struct {
		days  int
		start string
	}{
		{1, "2025-07-15T00:00:00Z"},
		{7, "2025-07-09T00:00:00Z"},
		{30, "2025-06-16T00:00:00Z"},
	}
	for _, tt := range tests {
		w := TrailingWindow(now, tt.days)
		if !w.Start.Equal(ts(t, tt.start)) {
			t.Errorf("days=%d: expected start %s, got %v", tt.days, tt.start, w.Start)
		}
		if !w.End.Equal(ts(t, "2025-07-16T00:00:00Z")) {
			t.Errorf("days=%d: expected end 2025-07-16, got %v", tt.days, w.End)
		}
		if w.Days() != tt.days {
			t.Errorf("days=%d: window spans %d days", tt.days, w.Days())
		}
	}
}

func TestTrailingWindowNonUTC(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	// 2025-07-16 02:00 in UTC+9 is still 2025-07-15 in UTC.
	now := time.Date(2025, 7, 16, 2, 0, 0, 0, loc)
	w := TrailingWindow(now, 1)
	if !w.Start.Equal(ts(t, "2025-07-15T00:00:00Z")) {
		t.Errorf("expected UTC day, got %v", w.Start)
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	in := ts(t, "2025-06-05T10:11:12Z")
	out, err := ParseTimestamp(FormatTimestamp(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Equal(in) {
		t.Errorf("expected %v, got %v", in, out)
	}

	day, err := ParseTimestamp("2025-06-05")
	if err != nil || !day.Equal(ts(t, "2025-06-05T00:00:00Z")) {
		t.Errorf("date-only parse: %v %v", day, err)
	}
	if _, err := ParseTimestamp("yesterday"); err == nil {
		t.Error("expected error for garbage timestamp")
	}
}

func TestFormatWindowDisplay(t *testing.T) {
	tests := []struct {
		name string
		w    Window
		want string
	}{
		{"single day", DateWindow(ts(t, "2026-02-06T00:00:00Z"), ts(t, "2026-02-06T00:00:00Z")), "Feb 06, 2026"},
		{"range", DateWindow(ts(t, "2026-02-01T00:00:00Z"), ts(t, "2026-02-06T00:00:00Z")), "Feb 01 - Feb 06, 2026"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatWindowDisplay(tt.w); got != tt.want {
				t.Errorf("FormatWindowDisplay() = %q, want %q", got, tt.want)
			}
		})
	}
}
