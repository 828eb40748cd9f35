package timex

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotResolvable is returned when a value has no single concrete reading.
var ErrNotResolvable = errors.New("timex is not resolvable to a single value")

func valueOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

// Resolve returns the concrete value of a definite date, a time of day or a
// definite date time, formatted as "2006-01-02", "15:04:05" or
// "2006-01-02 15:04:05".
func (p *Property) Resolve() (string, error) {
	types := p.Types()
	clock := func() string {
		return fmt.Sprintf("%02d:%02d:%02d", *p.Hour, valueOr(p.Minute, 0), valueOr(p.Second, 0))
	}
	switch {
	case p.Now:
		return "", ErrNotResolvable
	case types[Definite] && types[Time]:
		return fmt.Sprintf("%04d-%02d-%02d %s", *p.Year, *p.Month, *p.DayOfMonth, clock()), nil
	case types[Definite]:
		return fmt.Sprintf("%04d-%02d-%02d", *p.Year, *p.Month, *p.DayOfMonth), nil
	case types[Time] && !types[Date]:
		return clock(), nil
	}
	return "", ErrNotResolvable
}

// Date returns the calendar date of a definite value.
func (p *Property) Date() (time.Time, bool) {
	if p.Year == nil || p.Month == nil || p.DayOfMonth == nil {
		return time.Time{}, false
	}
	return time.Date(*p.Year, time.Month(*p.Month), *p.DayOfMonth, 0, 0, 0, 0, time.UTC), true
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// isoWeekday maps Go's Sunday-first weekday to 1 (Monday) .. 7 (Sunday).
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func weekStart(t time.Time) time.Time {
	return dateOf(t).AddDate(0, 0, 1-isoWeekday(t))
}

// NextDate returns the first date on or after ref matching a partial date
// such as XXXX-12-20 or XXXX-WXX-3.
func (p *Property) NextDate(ref time.Time) (time.Time, error) {
	return p.viableDate(ref, 1)
}

// PreviousDate returns the last date on or before ref matching a partial
// date.
func (p *Property) PreviousDate(ref time.Time) (time.Time, error) {
	return p.viableDate(ref, -1)
}

func (p *Property) viableDate(ref time.Time, dir int) (time.Time, error) {
	today := dateOf(ref)
	switch {
	case p.DayOfWeek != nil:
		delta := (*p.DayOfWeek - isoWeekday(today) + 7) % 7
		if dir < 0 {
			delta = -((isoWeekday(today) - *p.DayOfWeek + 7) % 7)
		}
		return today.AddDate(0, 0, delta), nil
	case p.Month != nil && p.DayOfMonth != nil:
		// Feb 29 may need several years to recur.
		for i := 0; i <= 8; i++ {
			year := today.Year() + dir*i
			candidate := time.Date(year, time.Month(*p.Month), *p.DayOfMonth, 0, 0, 0, 0, time.UTC)
			if candidate.Day() != *p.DayOfMonth {
				continue
			}
			if dir > 0 && !candidate.Before(today) || dir < 0 && !candidate.After(today) {
				return candidate, nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("%s is not a valid partial date", p)
}

// NextTime returns the first instant at or after ref matching p's time of
// day.
func (p *Property) NextTime(ref time.Time) (time.Time, error) {
	return p.viableTime(ref, 1)
}

// PreviousTime returns the last instant at or before ref matching p's time
// of day.
func (p *Property) PreviousTime(ref time.Time) (time.Time, error) {
	return p.viableTime(ref, -1)
}

func (p *Property) viableTime(ref time.Time, dir int) (time.Time, error) {
	if p.Hour == nil {
		return time.Time{}, fmt.Errorf("%s is not a valid time", p)
	}
	candidate := time.Date(ref.Year(), ref.Month(), ref.Day(), *p.Hour, valueOr(p.Minute, 0), valueOr(p.Second, 0), 0, ref.Location())
	if dir > 0 && candidate.Before(ref) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	if dir < 0 && candidate.After(ref) {
		candidate = candidate.AddDate(0, 0, -1)
	}
	return candidate, nil
}
