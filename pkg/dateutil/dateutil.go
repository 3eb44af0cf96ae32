// Package dateutil provides calendar-date helpers. All dates are normalised to midnight UTC so that
// values coming from the database, query strings and tests compare equal.
package dateutil

import "time"

// Layout is the wire format for calendar dates.
const Layout = "2006-01-02"

// Date creates a calendar date at midnight UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Ptr returns a pointer to the calendar date.
func Ptr(year int, month time.Month, day int) *time.Time {
	d := Date(year, month, day)
	return &d
}

// Truncate drops the time-of-day component, keeping the calendar date as seen in t's location.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n calendar days after d.
func AddDays(d time.Time, n int) time.Time {
	return Truncate(d).AddDate(0, 0, n)
}

// IsWeekend reports whether d falls on a Saturday or Sunday.
func IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Parse parses a YYYY-MM-DD date.
func Parse(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, raw, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// Format renders a date as YYYY-MM-DD.
func Format(d time.Time) string {
	return d.Format(Layout)
}
