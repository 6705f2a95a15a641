package core

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSumByDealCategoryMergesKeys(t *testing.T) {
	records := []TimesheetRecord{
		{DealCategory: "M&A Deal", Hours: 2},
		{DealCategory: "m&a   deal", Hours: 3},
		{DealCategory: "IPO", Hours: 4},
		{DealCategory: "", Hours: 9},   // no category: omitted
		{DealCategory: "IPO", Hours: 0}, // non-positive hours: skipped
	}
	got := SumByDealCategory(records)
	if len(got) != 2 {
		t.Fatalf("got %d groups, want 2: %v", len(got), got)
	}
	// First-seen display form labels the bucket.
	if got[0].Label != "M&A Deal" || !almostEqual(got[0].Hours, 5) || got[0].Count != 2 {
		t.Fatalf("group 0: %+v", got[0])
	}
	if got[1].Label != "IPO" || !almostEqual(got[1].Hours, 4) {
		t.Fatalf("group 1: %+v", got[1])
	}
}

func TestAggregationPreservesTotal(t *testing.T) {
	records := []TimesheetRecord{
		{DealCategory: "IPO", DealName: "Acme", Team: "Legal", Month: "2025/01", Hours: 2.5},
		{DealCategory: "M&A Deal", DealName: "Globex", Team: "Legal", Month: "2025/01", Hours: 4},
		{DealCategory: "IPO", DealName: "Acme", Team: "Tax", Month: "2025/02", Hours: 1.5},
		{DealCategory: "Corporate", DealName: "Initech", Team: "Tax", Month: "2025/03", Hours: 8},
	}
	want := TotalHours(records)

	for name, groups := range map[string][]GroupTotal{
		"category": SumByDealCategory(records),
		"company":  SumByCompany(records),
		"team":     SumByTeam(records),
	} {
		var sum float64
		for _, g := range groups {
			sum += g.Hours
		}
		if !almostEqual(sum, want) {
			t.Fatalf("%s grouping: sum %v, want %v", name, sum, want)
		}
	}

	var monthSum float64
	for _, m := range SumByMonth(records) {
		monthSum += m.Hours
	}
	if !almostEqual(monthSum, want) {
		t.Fatalf("month grouping: sum %v, want %v", monthSum, want)
	}
}

func TestSumByMonthSorted(t *testing.T) {
	records := []TimesheetRecord{
		{Month: "2025/03", Hours: 1},
		{Month: "2025/01", Hours: 2},
		{Month: "2025/03", Hours: 3},
		{Month: "nope", Hours: 4},
	}
	got := SumByMonth(records)
	if len(got) != 2 {
		t.Fatalf("got %v", got)
	}
	if got[0].Month != (Month{2025, 1}) || !almostEqual(got[0].Hours, 2) {
		t.Fatalf("first: %+v", got[0])
	}
	if got[1].Month != (Month{2025, 3}) || !almostEqual(got[1].Hours, 4) || got[1].Count != 2 {
		t.Fatalf("second: %+v", got[1])
	}
}

func TestMonthlyTrend(t *testing.T) {
	records := []TimesheetRecord{
		{Month: "2025/01", Hours: 10},
		{Month: "2025/02", Hours: 15},
		{Month: "2025/03", Hours: 12},
	}
	got := MonthlyTrend(records)
	if len(got) != 3 {
		t.Fatalf("got %v", got)
	}
	if !almostEqual(got[0].Change, 0) {
		t.Fatalf("first point change: %v", got[0].Change)
	}
	if !almostEqual(got[1].Change, 50) {
		t.Fatalf("second point change: %v", got[1].Change)
	}
	if !almostEqual(got[2].Change, -20) {
		t.Fatalf("third point change: %v", got[2].Change)
	}
}

func TestMoMChange(t *testing.T) {
	cases := []struct{ cur, prev, want float64 }{
		{150, 100, 50},
		{50, 100, -50},
		{100, 100, 0},
		{42, 0, 0}, // zero previous is 0%, not infinity and not 100%
		{0, 0, 0},
	}
	for i, tc := range cases {
		if got := MoMChange(tc.cur, tc.prev); !almostEqual(got, tc.want) {
			t.Fatalf("case %d: got %v, want %v", i, got, tc.want)
		}
	}
}

func TestMean(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Fatalf("empty mean: %v", got)
	}
	if got := Mean([]float64{1, 2, 3, 4}); !almostEqual(got, 2.5) {
		t.Fatalf("mean: %v", got)
	}
}

// Median is pinned to the upper-middle element for even lengths: this is
// deliberate, not a true statistical median.
func TestMedianUpperMiddle(t *testing.T) {
	cases := []struct {
		in   []float64
		want float64
	}{
		{[]float64{10, 20, 30}, 20},
		{[]float64{10, 20}, 20},
		{[]float64{30, 10, 20, 40}, 30},
		{[]float64{5}, 5},
		{nil, 0},
	}
	for i, tc := range cases {
		if got := Median(tc.in); !almostEqual(got, tc.want) {
			t.Fatalf("case %d: Median(%v) = %v, want %v", i, tc.in, got, tc.want)
		}
	}
}

func TestParticipantCount(t *testing.T) {
	records := []TimesheetRecord{
		{Name: "Alice", Hours: 1},
		{Name: "alice ", Hours: 2}, // same person after normalization
		{Name: "Bob", Hours: 3},
		{Name: "Carol", Hours: 0}, // no positive hours
	}
	if got := ParticipantCount(records); got != 2 {
		t.Fatalf("got %d, want 2", got)
	}
}
