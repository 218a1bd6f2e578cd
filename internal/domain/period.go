package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidPeriod is returned when a period selector is not week, month or year.
var ErrInvalidPeriod = errors.New("invalid period")

// Period selects the aggregation window for stats and trends.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ParsePeriod normalizes a period selector. Matching is case-insensitive.
func ParsePeriod(raw string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "week":
		return PeriodWeek, nil
	case "month":
		return PeriodMonth, nil
	case "year":
		return PeriodYear, nil
	default:
		return "", ErrInvalidPeriod
	}
}

// Window bounds one aggregation period. Start is the first instant of the
// period, End the last (23:59:59.999). Buckets is the number of ordered
// aggregation slots: 7 for a week, days-in-month for a month, 12 for a year.
type Window struct {
	Start   time.Time
	End     time.Time
	Buckets int
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// CurrentWindow computes the window containing ref for the given period.
// Weeks start on Monday: a Sunday reference rolls back six days.
func CurrentWindow(p Period, ref time.Time) (Window, error) {
	switch p {
	case PeriodWeek:
		start := startOfWeek(ref)
		return weekWindow(start), nil
	case PeriodMonth:
		start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
		return monthWindow(start), nil
	case PeriodYear:
		start := time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, ref.Location())
		return yearWindow(start), nil
	default:
		return Window{}, ErrInvalidPeriod
	}
}

// PreviousWindow computes the window immediately before the one containing ref.
func PreviousWindow(p Period, ref time.Time) (Window, error) {
	switch p {
	case PeriodWeek:
		return weekWindow(startOfWeek(ref).AddDate(0, 0, -7)), nil
	case PeriodMonth:
		first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
		return monthWindow(first.AddDate(0, -1, 0)), nil
	case PeriodYear:
		return yearWindow(time.Date(ref.Year()-1, time.January, 1, 0, 0, 0, 0, ref.Location())), nil
	default:
		return Window{}, ErrInvalidPeriod
	}
}

// BucketIndex maps an instant inside the window to its bucket slot:
// Monday=0..Sunday=6 for weeks, day-of-month-1 for months, month-1 for years.
func (w Window) BucketIndex(p Period, t time.Time) int {
	switch p {
	case PeriodWeek:
		return mondayIndex(t.Weekday())
	case PeriodMonth:
		return t.Day() - 1
	case PeriodYear:
		return int(t.Month()) - 1
	default:
		return -1
	}
}

// ElapsedWeekDays returns how many calendar days of the current week have
// passed up to and including ref: Monday=1 .. Sunday=7.
func ElapsedWeekDays(ref time.Time) int {
	return mondayIndex(ref.Weekday()) + 1
}

func mondayIndex(d time.Weekday) int {
	// time.Weekday counts Sunday=0; the platform convention is Monday=0.
	return (int(d) + 6) % 7
}

func startOfWeek(ref time.Time) time.Time {
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	return day.AddDate(0, 0, -mondayIndex(ref.Weekday()))
}

func weekWindow(start time.Time) Window {
	return Window{
		Start:   start,
		End:     lastInstant(start.AddDate(0, 0, 7)),
		Buckets: 7,
	}
}

func monthWindow(first time.Time) Window {
	return Window{
		Start:   first,
		End:     lastInstant(first.AddDate(0, 1, 0)),
		Buckets: first.AddDate(0, 1, -1).Day(),
	}
}

func yearWindow(first time.Time) Window {
	return Window{
		Start:   first,
		End:     lastInstant(first.AddDate(1, 0, 0)),
		Buckets: 12,
	}
}

// lastInstant converts an exclusive upper bound into the inclusive
// 23:59:59.999 instant the mobile clients expect.
func lastInstant(nextStart time.Time) time.Time {
	return nextStart.Add(-time.Millisecond)
}
