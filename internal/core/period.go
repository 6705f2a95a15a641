package core

import (
	"fmt"
	"time"
)

type PeriodKind string

const (
	Monthly      PeriodKind = "monthly"
	Quarterly    PeriodKind = "quarterly"
	Semiannually PeriodKind = "semiannually"
	Annually     PeriodKind = "annually"
	Custom       PeriodKind = "custom"
)

// ValueAbsent marks a missing sub-period selection; the resolver then
// falls back to the period containing the dataset's most recent month.
const ValueAbsent = -1

// PeriodSelection describes what the user picked in the period selector.
// Value is interpreted per kind: month 1-12 for Monthly, quarter index 0-3
// for Quarterly, half index 0-1 for Semiannually; ValueAbsent everywhere.
// Start/End are only read for Custom.
type PeriodSelection struct {
	Kind  PeriodKind
	Year  int
	Value int
	Start Month
	End   Month
}

// Range is a closed date interval aligned to whole months.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the interval, inclusive.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// ContainsMonth reports whether any day of m lies inside the interval.
func (r Range) ContainsMonth(m Month) bool {
	return r.Contains(m.Start())
}

func (r Range) String() string {
	return fmt.Sprintf("%s..%s", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
}

func monthSpan(start Month, months int) Range {
	end := start.AddMonths(months - 1)
	return Range{Start: start.Start(), End: end.End()}
}

// Resolve maps the selection to a concrete interval. Absent pieces fall
// back to the most recent month found in records; with an empty dataset
// the current calendar month (from now) is used instead.
func (s PeriodSelection) Resolve(records []TimesheetRecord, now time.Time) Range {
	latest, ok := LatestMonth(records)
	if !ok {
		latest = MonthOf(now)
	}

	year := s.Year
	if year == 0 {
		year = latest.Year
	}

	switch s.Kind {
	case Quarterly:
		q := s.Value
		if q < 0 || q > 3 {
			q = (latest.Month - 1) / 3
		}
		return monthSpan(Month{Year: year, Month: q*3 + 1}, 3)
	case Semiannually:
		h := s.Value
		if h < 0 || h > 1 {
			h = (latest.Month - 1) / 6
		}
		return monthSpan(Month{Year: year, Month: h*6 + 1}, 6)
	case Annually:
		return monthSpan(Month{Year: year, Month: 1}, 12)
	case Custom:
		start, end := s.Start, s.End
		if start.IsZero() {
			start = latest
		}
		if end.IsZero() {
			end = latest
		}
		if end.Before(start) {
			start, end = end, start
		}
		return Range{Start: start.Start(), End: end.End()}
	default: // Monthly, and any unknown kind degrades to a single month
		m := s.Value
		if m < 1 || m > 12 {
			m = latest.Month
			if s.Year == 0 {
				year = latest.Year
			}
		}
		return monthSpan(Month{Year: year, Month: m}, 1)
	}
}
