// Package dates provides whole-day date utility functions.
//
// The engine has no timezone semantics beyond whole-day differences, so all
// helpers here operate on calendar days.
package dates

import (
	"math"
	"time"

	"github.com/microlend/loan-engine/pkg/constants"
)

const (
	// DateLayout is the format expected in config files and is also the
	// output date format.
	DateLayout = constants.DateLayout

	hoursPerDay = 24
)

// MustParse parses a date string in DateLayout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParse(dateStr string) time.Time {
	t, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// DaysBetweenCeil returns the difference to minus from in days, rounding any
// partial day up. A result of zero or less means to is on or before from.
func DaysBetweenCeil(from, to time.Time) int {
	diff := to.Sub(from)
	return int(math.Ceil(diff.Hours() / hoursPerDay))
}

// DaysBetweenFloor returns the difference to minus from in whole elapsed days,
// discarding any partial day.
func DaysBetweenFloor(from, to time.Time) int {
	diff := to.Sub(from)
	return int(math.Floor(diff.Hours() / hoursPerDay))
}

// AddDays returns the date offset by the given number of calendar days.
func AddDays(date time.Time, days int) time.Time {
	return date.AddDate(0, 0, days)
}
