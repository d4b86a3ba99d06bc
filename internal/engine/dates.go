package engine

import "time"

// DateOnly strips the time-of-day and normalizes the location so due-date
// comparisons never depend on clock time or timezone.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from a to b (date-only).
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}

// AddMonths steps a due date forward by whole calendar months. Go normalizes
// end-of-month overflow (Jan 31 + 1 month lands in early March); callers that
// need a stable payment day should use day-of-month 28 or lower.
func AddMonths(t time.Time, n int) time.Time {
	return DateOnly(t).AddDate(0, n, 0)
}
