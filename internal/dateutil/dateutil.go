// Package dateutil provides the calendar math used by recurring-rule
// materialization and period reporting. All helpers operate on whole
// days: times are truncated to midnight in the input's location.
package dateutil

import "time"

// Midnight truncates t to the start of its day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MonthStart returns the first day of the month containing t.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// NextMonth returns the first day of the month after the one containing t.
func NextMonth(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, 0)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampedDate builds a date in the given month, clamping day to the
// month's last day when it exceeds the month length. Day 31 in February
// yields Feb 28 (or 29 in a leap year), never a rollover into March.
func ClampedDate(year int, month time.Month, day int, loc *time.Location) time.Time {
	if max := DaysIn(year, month); day > max {
		day = max
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}
