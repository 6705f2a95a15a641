package core

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

var ErrUnparseableMonth = errors.New("unparseable month")

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month int // 1-12
}

// NewMonth builds a Month, normalizing out-of-range month values the way
// time.Date does (e.g. month 13 rolls into the next year).
func NewMonth(year, month int) Month {
	t := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return Month{Year: t.Year(), Month: int(t.Month())}
}

// MonthOf returns the Month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: int(t.Month())}
}

func (m Month) IsZero() bool { return m.Year == 0 && m.Month == 0 }

// Start returns midnight UTC on the first day of the month.
func (m Month) Start() time.Time {
	return time.Date(m.Year, time.Month(m.Month), 1, 0, 0, 0, 0, time.UTC)
}

// End returns midnight UTC on the last day of the month. Day 0 of the
// following month normalizes to the last day of this one.
func (m Month) End() time.Time {
	return time.Date(m.Year, time.Month(m.Month)+1, 0, 0, 0, 0, 0, time.UTC)
}

// AddMonths returns the month n months later (earlier for negative n).
func (m Month) AddMonths(n int) Month {
	return NewMonth(m.Year, m.Month+n)
}

func (m Month) Before(other Month) bool {
	return m.Year < other.Year || (m.Year == other.Year && m.Month < other.Month)
}

func (m Month) After(other Month) bool {
	return other.Before(m)
}

func (m Month) String() string {
	return fmt.Sprintf("%04d/%02d", m.Year, m.Month)
}

// sheetEpoch is day zero of the Google Sheets / Excel date serial scheme.
var sheetEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Serial values outside 2000-01-01..2099-12-31 are treated as unparseable
// rather than silently mapped to implausible dates; in particular a bare
// year like "2025" must not be read as a serial for 1905.
const (
	minSerial = 36526 // 2000-01-01
	maxSerial = 73050 // 2099-12-31
)

// ParseMonth resolves a raw month cell to a calendar month. Accepted forms:
//
//	"2025/01", "2025-1", "2025.03"      year/month with common separators
//	"2025/01/15"                        full dates; the day is ignored
//	"45658" or "45658.5"                spreadsheet date serials
//
// Anything else fails closed with ErrUnparseableMonth.
func ParseMonth(raw string) (Month, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Month{}, ErrUnparseableMonth
	}

	// Date serial: a bare number of days since the sheet epoch.
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < minSerial || serial > maxSerial {
			return Month{}, fmt.Errorf("%w: serial %v out of range", ErrUnparseableMonth, serial)
		}
		t := sheetEpoch.AddDate(0, 0, int(serial))
		return MonthOf(t), nil
	}

	norm := strings.NewReplacer("-", "/", ".", "/").Replace(s)
	parts := strings.Split(norm, "/")
	if len(parts) < 2 || len(parts) > 3 {
		return Month{}, fmt.Errorf("%w: %q", ErrUnparseableMonth, raw)
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || year < 1000 || year > 9999 {
		return Month{}, fmt.Errorf("%w: %q", ErrUnparseableMonth, raw)
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || month < 1 || month > 12 {
		return Month{}, fmt.Errorf("%w: %q", ErrUnparseableMonth, raw)
	}
	return Month{Year: year, Month: month}, nil
}

// LatestMonth returns the most recent parseable month across records.
// The boolean is false when no record carries a usable month.
func LatestMonth(records []TimesheetRecord) (Month, bool) {
	var latest Month
	found := false
	for _, r := range records {
		m, err := ParseMonth(r.Month)
		if err != nil {
			continue
		}
		if !found || m.After(latest) {
			latest = m
			found = true
		}
	}
	return latest, found
}

// DistinctMonths returns the sorted set of parseable months across records.
func DistinctMonths(records []TimesheetRecord) []Month {
	seen := map[Month]struct{}{}
	var out []Month
	for _, r := range records {
		m, err := ParseMonth(r.Month)
		if err != nil {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
