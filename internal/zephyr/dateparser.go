package zephyr

import (
	"fmt"
	"strings"
	"time"
)

// Zephyr renders execution timestamps for display, not for machines:
// "Today 9:15 AM", "Yesterday 9:15 AM", or "05/Jan/15 9:15 AM".
const (
	zephyrDateFormat = "02/Jan/06 3:04 PM"
	zephyrTimeFormat = "3:04 PM"

	todayPrefix     = "Today"
	yesterdayPrefix = "Yesterday"
)

// ParseExecutionDate parses a Zephyr executedOn value. Relative forms are
// resolved against the given reference time. An unparseable value is a data
// error the caller must surface.
func ParseExecutionDate(value string, now time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	switch {
	case strings.HasPrefix(trimmed, todayPrefix):
		return timeOfDayOn(now, strings.TrimSpace(strings.TrimPrefix(trimmed, todayPrefix)))
	case strings.HasPrefix(trimmed, yesterdayPrefix):
		return timeOfDayOn(now.AddDate(0, 0, -1), strings.TrimSpace(strings.TrimPrefix(trimmed, yesterdayPrefix)))
	}

	parsed, err := time.Parse(zephyrDateFormat, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable Zephyr execution date %q: %w", value, err)
	}
	return parsed, nil
}

func timeOfDayOn(day time.Time, clock string) (time.Time, error) {
	parsed, err := time.Parse(zephyrTimeFormat, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable Zephyr execution time %q: %w", clock, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, day.Location()), nil
}
