package util

import (
	"fmt"
	"time"
)

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ParseClock parses an "HH:MM" local time-of-day string into minutes since
// midnight. The empty string is rejected so callers handle missing data
// explicitly.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Clock renders a timestamp as "HH:MM" in its own location.
func Clock(t time.Time) string {
	return t.Format("15:04")
}

// AtClock returns the timestamp on day's date with the given minutes since
// midnight, preserving day's location.
func AtClock(day time.Time, minutes int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()).
		Add(time.Duration(minutes) * time.Minute)
}

// SameDate reports whether two timestamps fall on the same calendar date in
// their respective locations.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
