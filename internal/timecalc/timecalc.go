// Package timecalc holds the date arithmetic and fixed-width formatting used by the
// overlay readouts.
package timecalc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Unit selects the calendar or clock unit for DateAdd
type Unit string

const (
	Year    Unit = "year"
	Quarter Unit = "quarter"
	Month   Unit = "month"
	Week    Unit = "week"
	Day     Unit = "day"
	Hour    Unit = "hour"
	Minute  Unit = "minute"
	Second  Unit = "second"
)

// ErrUnknownUnit is returned for a unit selector DateAdd does not support
var ErrUnknownUnit = errors.New("unknown date unit")

// ParseUnit normalizes a unit selector. Matching is case-insensitive.
func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.ToLower(strings.TrimSpace(s)))
	switch u {
	case Year, Quarter, Month, Week, Day, Hour, Minute, Second:
		return u, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
	}
}

// DateAdd returns t offset by n units. Month-family units add to the calendar month and
// then clamp to the last day of the intended month instead of overflowing into the next one
// (Jan 31 + 1 month is Feb 28 or 29).
func DateAdd(t time.Time, unit Unit, n int) (time.Time, error) {
	u, err := ParseUnit(string(unit))
	if err != nil {
		return time.Time{}, err
	}

	switch u {
	case Year:
		return addMonths(t, 12*n), nil
	case Quarter:
		return addMonths(t, 3*n), nil
	case Month:
		return addMonths(t, n), nil
	case Week:
		return t.AddDate(0, 0, 7*n), nil
	case Day:
		return t.AddDate(0, 0, n), nil
	case Hour:
		return t.Add(time.Duration(n) * time.Hour), nil
	case Minute:
		return t.Add(time.Duration(n) * time.Minute), nil
	default:
		return t.Add(time.Duration(n) * time.Second), nil
	}
}

func addMonths(t time.Time, months int) time.Time {
	ret := t.AddDate(0, months, 0)
	if ret.Day() != t.Day() {
		// Day 0 of the overflowed month is the last day of the one we wanted
		y, m, _ := ret.Date()
		ret = time.Date(y, m, 0, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	}
	return ret
}

// Pad zero-pads num and keeps the last size characters, so values wider than size are
// truncated from the left: Pad(7, 2) is "07", Pad(123, 2) is "23".
func Pad(num, size int) string {
	s := "000000000" + strconv.Itoa(num)
	if size >= len(s) {
		return s
	}
	if size < 0 {
		size = 0
	}
	return s[len(s)-size:]
}

// RoundHalfUp rounds to the nearest integer with ties going toward positive infinity.
func RoundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// ClockHHMM formats the UTC wall clock of t as HH:MM
func ClockHHMM(t time.Time) string {
	u := t.UTC()
	return Pad(u.Hour(), 2) + ":" + Pad(u.Minute(), 2)
}
