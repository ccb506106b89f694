package repository

import (
	"context"
	"time"
)

// RateLimiter gates repeated scans of the same domain on the same calendar day.
type RateLimiter interface {
	// CheckAndMark atomically records (domain, day) and reports whether it was absent.
	// A present key returns false without side effects.
	CheckAndMark(ctx context.Context, domain string, day time.Time) (bool, error)
	// Release removes the (domain, day) entry, used when a scan fails before producing a result.
	Release(ctx context.Context, domain string, day time.Time) error
}

// DayKey formats the calendar-date half of a rate-limit key in UTC.
func DayKey(day time.Time) string {
	return day.UTC().Format("2006-01-02")
}

// NextReset is the UTC midnight after day, when a day's entries stop applying.
func NextReset(day time.Time) time.Time {
	d := day.UTC()
	return time.Date(d.Year(), d.Month(), d.Day()+1, 0, 0, 0, 0, time.UTC)
}
