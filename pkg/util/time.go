package util

import (
	"time"
)

// GetZeroTime gets 0:00 of a certain day.
func GetZeroTime(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

// GetEndTime gets 23:59:59 of a certain day.
func GetEndTime(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, d.Location())
}

// GetFirstDateOfMonth gets 0:00 on the first day of the month of d.
func GetFirstDateOfMonth(d time.Time) time.Time {
	d = d.AddDate(0, 0, -d.Day()+1)
	return GetZeroTime(d)
}

// NextMidnight returns the next local midnight strictly after d.
func NextMidnight(d time.Time) time.Time {
	return GetZeroTime(d).AddDate(0, 0, 1)
}
