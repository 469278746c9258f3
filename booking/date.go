package booking

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Calendar date, no time-of-day
// =============================================================================

// Date is a calendar date pinned to UTC. All hotel dates (check-in,
// check-out, nightly rates) are calendar dates; time-of-day only matters
// for the cancellation cutoff, where check-in is treated as start of day.
type Date struct {
	Time time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its UTC calendar date.
func DateOf(t time.Time) Date {
	t = t.UTC()
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool { return d.normalize().Before(other.normalize()) }
func (d Date) Equal(other Date) bool  { return d.normalize().Equal(other.normalize()) }
func (d Date) After(other Date) bool  { return d.normalize().After(other.normalize()) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{Time: d.Time.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int             { return d.Time.Year() }
func (d Date) Month() time.Month     { return d.Time.Month() }
func (d Date) Day() int              { return d.Time.Day() }
func (d Date) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Date) IsZero() bool          { return d.Time.IsZero() }

// StartOfDay returns the date as a timestamp at 00:00 UTC.
// Used by the cancellation cutoff, which measures against start of day.
func (d Date) StartOfDay() time.Time { return d.normalize() }

func (d Date) String() string { return d.normalize().Format("2006-01-02") }

// DaysBetween returns whole days from one date to another.
func DaysBetween(from, to Date) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

// =============================================================================
// STAY RANGE - Half-open [check-in, check-out)
// =============================================================================

// StayRange is a requested or reserved stay. Check-in is inclusive,
// check-out is exclusive: a guest leaving on the 14th does not block a
// guest arriving on the 14th.
type StayRange struct {
	CheckIn  Date
	CheckOut Date
}

func NewStayRange(checkIn, checkOut Date) StayRange {
	return StayRange{CheckIn: checkIn, CheckOut: checkOut}
}

// Validate ensures check-out is strictly after check-in.
func (sr StayRange) Validate() error {
	if !sr.CheckOut.After(sr.CheckIn) {
		return &InvalidRangeError{CheckIn: sr.CheckIn, CheckOut: sr.CheckOut}
	}
	return nil
}

// Nights returns the number of nights in the stay.
func (sr StayRange) Nights() int {
	return DaysBetween(sr.CheckIn, sr.CheckOut)
}

// NightDates returns each night of the stay as a calendar date,
// from check-in (inclusive) to check-out (exclusive).
func (sr StayRange) NightDates() []Date {
	var nights []Date
	for d := sr.CheckIn; d.Before(sr.CheckOut); d = d.AddDays(1) {
		nights = append(nights, d)
	}
	return nights
}

// Overlaps reports whether two stays share at least one night.
// Half-open semantics: back-to-back stays (a.CheckOut == b.CheckIn)
// do NOT overlap.
func (sr StayRange) Overlaps(other StayRange) bool {
	return sr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(sr.CheckOut)
}

// Contains reports whether a night falls inside the stay.
func (sr StayRange) Contains(d Date) bool {
	return !d.Before(sr.CheckIn) && d.Before(sr.CheckOut)
}

func (sr StayRange) String() string {
	return "[" + sr.CheckIn.String() + ", " + sr.CheckOut.String() + ")"
}
