package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/nhle/task-reminders/internal/notify"
)

// parseWhen reads a point in time relative to now. It accepts a
// duration ("90m", "+2h"), a wall-clock time ("18:30", next occurrence),
// "2006-01-02 15:04", or any layout cast understands, such as RFC 3339
// and plain dates.
func parseWhen(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}

	if d, err := time.ParseDuration(strings.TrimPrefix(s, "+")); err == nil {
		return now.Add(d), nil
	}
	if h, m, err := notify.ParseTimeOfDay(s); err == nil {
		return notify.NextOccurrence(now, h, m), nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", s, now.Location()); err == nil {
		return t, nil
	}
	t, err := cast.ToTimeInDefaultLocationE(s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized time %q", s)
	}
	return t, nil
}

// parseOptionalWhen treats "none" as clearing the value.
func parseOptionalWhen(s string, now time.Time) (*time.Time, error) {
	if strings.EqualFold(strings.TrimSpace(s), "none") {
		return nil, nil
	}
	t, err := parseWhen(s, now)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
