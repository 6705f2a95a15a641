package core

import (
	"testing"
	"time"
)

var periodNow = time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestResolveMonthly(t *testing.T) {
	for month := 1; month <= 12; month++ {
		sel := PeriodSelection{Kind: Monthly, Year: 2025, Value: month}
		r := sel.Resolve(nil, periodNow)
		if !r.Start.Equal(day(2025, month, 1)) {
			t.Fatalf("month %d: start %v", month, r.Start)
		}
		// The interval must contain every day of the month and no others.
		if !r.Contains(r.Start) || !r.Contains(r.End) {
			t.Fatalf("month %d: interval not inclusive", month)
		}
		if r.Contains(r.Start.AddDate(0, 0, -1)) {
			t.Fatalf("month %d: contains day before start", month)
		}
		if r.Contains(r.End.AddDate(0, 0, 1)) {
			t.Fatalf("month %d: contains day after end", month)
		}
		if next := r.End.AddDate(0, 0, 1); next.Day() != 1 {
			t.Fatalf("month %d: end %v is not the last day", month, r.End)
		}
	}
}

func TestResolveQuarterly(t *testing.T) {
	for q := 0; q <= 3; q++ {
		sel := PeriodSelection{Kind: Quarterly, Year: 2025, Value: q}
		r := sel.Resolve(nil, periodNow)
		wantStart := day(2025, q*3+1, 1)
		if !r.Start.Equal(wantStart) {
			t.Fatalf("quarter %d: start %v, want %v", q, r.Start, wantStart)
		}
		// Exactly three consecutive months.
		wantEnd := NewMonth(2025, q*3+3).End()
		if !r.End.Equal(wantEnd) {
			t.Fatalf("quarter %d: end %v, want %v", q, r.End, wantEnd)
		}
	}
}

func TestResolveSemiannually(t *testing.T) {
	cases := []struct {
		half       int
		start, end Month
	}{
		{0, Month{2025, 1}, Month{2025, 6}},
		{1, Month{2025, 7}, Month{2025, 12}},
	}
	for _, tc := range cases {
		r := PeriodSelection{Kind: Semiannually, Year: 2025, Value: tc.half}.Resolve(nil, periodNow)
		if !r.Start.Equal(tc.start.Start()) || !r.End.Equal(tc.end.End()) {
			t.Fatalf("half %d: got %v", tc.half, r)
		}
	}
}

func TestResolveAnnually(t *testing.T) {
	r := PeriodSelection{Kind: Annually, Year: 2024}.Resolve(nil, periodNow)
	if !r.Start.Equal(day(2024, 1, 1)) || !r.End.Equal(day(2024, 12, 31)) {
		t.Fatalf("got %v", r)
	}
}

func TestResolveCustom(t *testing.T) {
	r := PeriodSelection{
		Kind:  Custom,
		Start: Month{2025, 2},
		End:   Month{2025, 4},
	}.Resolve(nil, periodNow)
	if !r.Start.Equal(day(2025, 2, 1)) || !r.End.Equal(day(2025, 4, 30)) {
		t.Fatalf("got %v", r)
	}

	// Reversed bounds are swapped, keeping start <= end.
	r = PeriodSelection{
		Kind:  Custom,
		Start: Month{2025, 4},
		End:   Month{2025, 2},
	}.Resolve(nil, periodNow)
	if r.Start.After(r.End) {
		t.Fatalf("start after end: %v", r)
	}
	if !r.Start.Equal(day(2025, 2, 1)) {
		t.Fatalf("got %v", r)
	}
}

func TestResolveFallbacks(t *testing.T) {
	records := []TimesheetRecord{
		{Month: "2025/02", Hours: 3},
		{Month: "2025/05", Hours: 2},
	}

	// No explicit selection: most recent month in the data.
	r := PeriodSelection{Kind: Monthly, Value: ValueAbsent}.Resolve(records, periodNow)
	if !r.Start.Equal(day(2025, 5, 1)) || !r.End.Equal(day(2025, 5, 31)) {
		t.Fatalf("monthly fallback: got %v", r)
	}

	// Quarter absent: quarter containing the latest month (May -> Q1 index 1).
	r = PeriodSelection{Kind: Quarterly, Year: 2025, Value: ValueAbsent}.Resolve(records, periodNow)
	if !r.Start.Equal(day(2025, 4, 1)) || !r.End.Equal(day(2025, 6, 30)) {
		t.Fatalf("quarterly fallback: got %v", r)
	}

	// Half absent: half containing the latest month.
	r = PeriodSelection{Kind: Semiannually, Year: 2025, Value: ValueAbsent}.Resolve(records, periodNow)
	if !r.Start.Equal(day(2025, 1, 1)) || !r.End.Equal(day(2025, 6, 30)) {
		t.Fatalf("semiannual fallback: got %v", r)
	}

	// Empty dataset: current calendar month.
	r = PeriodSelection{Kind: Monthly, Value: ValueAbsent}.Resolve(nil, periodNow)
	if !r.Start.Equal(day(2025, 7, 1)) || !r.End.Equal(day(2025, 7, 31)) {
		t.Fatalf("empty dataset fallback: got %v", r)
	}
}
